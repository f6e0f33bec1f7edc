package access

// Capability names one class of action a role may perform. Capabilities are
// statically declared; there is no runtime registration.
type Capability string

const (
	CapUsersManage       Capability = "users.manage"
	CapCoursesCreate     Capability = "courses.create"
	CapCoursesManage     Capability = "courses.manage"
	CapLessonsManage     Capability = "lessons.manage"
	CapQuizzesManage     Capability = "quizzes.manage"
	CapQuizzesSubmit     Capability = "quizzes.submit"
	CapAssignmentsGrade  Capability = "assignments.grade"
	CapAssignmentsSubmit Capability = "assignments.submit"
	CapGroupsManage      Capability = "groups.manage"
	CapScheduleGenerate  Capability = "schedule.generate"
	CapEventsManage      Capability = "events.manage"
	CapChatPost          Capability = "chat.post"
	CapNotificationsSend Capability = "notifications.send"
	CapPaymentsManage    Capability = "payments.manage"
)

// AllCapabilities lists every declared capability.
func AllCapabilities() []Capability {
	return []Capability{
		CapUsersManage,
		CapCoursesCreate,
		CapCoursesManage,
		CapLessonsManage,
		CapQuizzesManage,
		CapQuizzesSubmit,
		CapAssignmentsGrade,
		CapAssignmentsSubmit,
		CapGroupsManage,
		CapScheduleGenerate,
		CapEventsManage,
		CapChatPost,
		CapNotificationsSend,
		CapPaymentsManage,
	}
}
