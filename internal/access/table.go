package access

import (
	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
)

// Table is an immutable role → capability-set mapping. It is constructed once
// at process start and injected into whatever needs to answer permission
// questions; it is never mutated afterwards.
type Table struct {
	grants map[models.UserRole]map[Capability]struct{}
}

// NewTable copies the provided grants into an immutable table. Every role in
// the system should have an entry, possibly empty.
func NewTable(grants map[models.UserRole][]Capability) *Table {
	copied := make(map[models.UserRole]map[Capability]struct{}, len(grants))
	for role, caps := range grants {
		set := make(map[Capability]struct{}, len(caps))
		for _, cap := range caps {
			set[cap] = struct{}{}
		}
		copied[role] = set
	}
	return &Table{grants: copied}
}

// DefaultTable returns the static permission assignment used by the API.
func DefaultTable() *Table {
	return NewTable(map[models.UserRole][]Capability{
		models.RoleAdmin: AllCapabilities(),
		models.RoleTeacher: {
			CapCoursesCreate,
			CapCoursesManage,
			CapLessonsManage,
			CapQuizzesManage,
			CapAssignmentsGrade,
			CapScheduleGenerate,
			CapChatPost,
			CapNotificationsSend,
		},
		models.RoleStudent: {
			CapQuizzesSubmit,
			CapAssignmentsSubmit,
			CapChatPost,
		},
	})
}

// Has reports whether the role holds the capability. Roles without a table
// entry hold nothing: an unknown role value is denied, never granted.
func (t *Table) Has(role models.UserRole, cap Capability) bool {
	set, ok := t.grants[role]
	if !ok {
		return false
	}
	_, ok = set[cap]
	return ok
}

// HasAny reports whether the role holds at least one of the capabilities.
func (t *Table) HasAny(role models.UserRole, caps ...Capability) bool {
	for _, cap := range caps {
		if t.Has(role, cap) {
			return true
		}
	}
	return false
}

// HasAll reports whether the role holds every listed capability.
func (t *Table) HasAll(role models.UserRole, caps ...Capability) bool {
	for _, cap := range caps {
		if !t.Has(role, cap) {
			return false
		}
	}
	return true
}
