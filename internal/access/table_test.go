package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
)

func TestDefaultTableCoversEveryRole(t *testing.T) {
	table := DefaultTable()

	roles := []models.UserRole{models.RoleAdmin, models.RoleTeacher, models.RoleStudent}
	for _, role := range roles {
		assert.True(t, table.HasAny(role, AllCapabilities()...), "role %s holds no capability", role)
	}
}

func TestAdminHoldsEveryCapability(t *testing.T) {
	table := DefaultTable()

	for _, cap := range AllCapabilities() {
		assert.True(t, table.Has(models.RoleAdmin, cap), "admin missing %s", cap)
	}
}

func TestTeacherGrants(t *testing.T) {
	table := DefaultTable()

	assert.True(t, table.Has(models.RoleTeacher, CapCoursesCreate))
	assert.True(t, table.Has(models.RoleTeacher, CapScheduleGenerate))
	assert.True(t, table.Has(models.RoleTeacher, CapAssignmentsGrade))

	assert.False(t, table.Has(models.RoleTeacher, CapUsersManage))
	assert.False(t, table.Has(models.RoleTeacher, CapPaymentsManage))
	assert.False(t, table.Has(models.RoleTeacher, CapQuizzesSubmit))
}

func TestStudentGrants(t *testing.T) {
	table := DefaultTable()

	assert.True(t, table.Has(models.RoleStudent, CapQuizzesSubmit))
	assert.True(t, table.Has(models.RoleStudent, CapAssignmentsSubmit))
	assert.True(t, table.Has(models.RoleStudent, CapChatPost))

	assert.False(t, table.Has(models.RoleStudent, CapCoursesCreate))
	assert.False(t, table.Has(models.RoleStudent, CapScheduleGenerate))
	assert.False(t, table.Has(models.RoleStudent, CapNotificationsSend))
}

func TestUnknownRoleHoldsNothing(t *testing.T) {
	table := DefaultTable()

	for _, cap := range AllCapabilities() {
		assert.False(t, table.Has(models.UserRole("AUDITOR"), cap))
	}
	assert.False(t, table.HasAny(models.UserRole(""), AllCapabilities()...))
}

func TestHasAll(t *testing.T) {
	table := DefaultTable()

	assert.True(t, table.HasAll(models.RoleTeacher, CapCoursesCreate, CapCoursesManage))
	assert.False(t, table.HasAll(models.RoleTeacher, CapCoursesCreate, CapUsersManage))
}
