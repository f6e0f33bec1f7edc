package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
)

func TestResolveRouteAdminPrefixBlocksStudents(t *testing.T) {
	resolver := DefaultResolver(DefaultTable())

	decision := resolver.ResolveRoute(models.RoleStudent, "GET", "/admin/users")
	assert.False(t, decision.Allowed)
	assert.Equal(t, "prefix:/admin", decision.Rule)

	// The prefix check fires even when the route has no capability rule.
	decision = resolver.ResolveRoute(models.RoleStudent, "GET", "/admin/payments")
	assert.False(t, decision.Allowed)
	assert.Equal(t, "prefix:/admin", decision.Rule)
}

func TestResolveRouteRoleAreaPrefixes(t *testing.T) {
	resolver := DefaultResolver(DefaultTable())

	// Teachers stay out of the student area and vice versa.
	decision := resolver.ResolveRoute(models.RoleTeacher, "GET", "/student/dashboard")
	assert.False(t, decision.Allowed)
	assert.Equal(t, "prefix:/student", decision.Rule)

	decision = resolver.ResolveRoute(models.RoleStudent, "GET", "/teacher/dashboard")
	assert.False(t, decision.Allowed)
	assert.Equal(t, "prefix:/teacher", decision.Rule)

	// Admins pass every area restriction.
	for _, path := range []string{"/student/dashboard", "/teacher/dashboard"} {
		decision = resolver.ResolveRoute(models.RoleAdmin, "GET", path)
		assert.True(t, decision.Allowed, "expected allow on %s, got rule %s", path, decision.Rule)
	}
}

func TestResolveRoutePrefixBeforeCapability(t *testing.T) {
	resolver := DefaultResolver(DefaultTable())

	// Students hold no schedule capability either, but the denial must name
	// the prefix restriction since it is evaluated first.
	decision := resolver.ResolveRoute(models.RoleStudent, "POST", "/admin/groups/g1/schedule/generate")
	assert.False(t, decision.Allowed)
	assert.Equal(t, "prefix:/admin", decision.Rule)
}

func TestResolveRouteCapabilityDenial(t *testing.T) {
	resolver := DefaultResolver(DefaultTable())

	// Teachers pass the /admin prefix allowlist but lack users.manage.
	decision := resolver.ResolveRoute(models.RoleTeacher, "POST", "/admin/users")
	assert.False(t, decision.Allowed)
	assert.Equal(t, "capability:users.manage", decision.Rule)
}

func TestResolveRouteAllowances(t *testing.T) {
	resolver := DefaultResolver(DefaultTable())

	tests := []struct {
		name   string
		role   models.UserRole
		method string
		path   string
	}{
		{"admin manages users", models.RoleAdmin, "POST", "/admin/users"},
		{"admin settles payments", models.RoleAdmin, "POST", "/admin/payments/p1/pay"},
		{"teacher generates schedule", models.RoleTeacher, "POST", "/admin/groups/g1/schedule/generate"},
		{"teacher creates course", models.RoleTeacher, "POST", "/courses"},
		{"teacher grades", models.RoleTeacher, "POST", "/assignments/a1/grade"},
		{"student submits quiz", models.RoleStudent, "POST", "/quizzes/q1/submit"},
		{"student posts chat", models.RoleStudent, "POST", "/groups/g1/chat"},
		{"student browses catalog", models.RoleStudent, "GET", "/courses"},
		{"student reads calendar", models.RoleStudent, "GET", "/calendar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := resolver.ResolveRoute(tt.role, tt.method, tt.path)
			assert.True(t, decision.Allowed, "expected allow, got rule %s", decision.Rule)
			assert.Empty(t, decision.Rule)
		})
	}
}

func TestResolveRouteDenials(t *testing.T) {
	resolver := DefaultResolver(DefaultTable())

	tests := []struct {
		name   string
		role   models.UserRole
		method string
		path   string
		rule   string
	}{
		{"student creates course", models.RoleStudent, "POST", "/courses", "capability:courses.create"},
		{"student broadcasts", models.RoleStudent, "POST", "/notifications/broadcast", "capability:notifications.send"},
		{"teacher submits quiz", models.RoleTeacher, "POST", "/quizzes/q1/submit", "capability:quizzes.submit"},
		{"teacher manages payments", models.RoleTeacher, "POST", "/admin/payments", "capability:payments.manage"},
		{"teacher manages groups", models.RoleTeacher, "POST", "/admin/groups", "capability:groups.manage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := resolver.ResolveRoute(tt.role, tt.method, tt.path)
			assert.False(t, decision.Allowed)
			assert.Equal(t, tt.rule, decision.Rule)
			assert.NotEmpty(t, decision.Reason)
		})
	}
}

func TestResolveRouteUnknownRoleDenied(t *testing.T) {
	resolver := DefaultResolver(DefaultTable())

	decision := resolver.ResolveRoute(models.UserRole("AUDITOR"), "POST", "/admin/users")
	assert.False(t, decision.Allowed)
	assert.Equal(t, "prefix:/admin", decision.Rule)

	decision = resolver.ResolveRoute(models.UserRole("AUDITOR"), "POST", "/quizzes/q1/submit")
	assert.False(t, decision.Allowed)
	assert.Equal(t, "capability:quizzes.submit", decision.Rule)
}

func TestResolveRouteUndeclaredRouteDefaultsToAllow(t *testing.T) {
	resolver := DefaultResolver(DefaultTable())

	decision := resolver.ResolveRoute(models.RoleStudent, "GET", "/notifications")
	assert.True(t, decision.Allowed)
}

func TestResolveRouteIsDeterministic(t *testing.T) {
	resolver := DefaultResolver(DefaultTable())

	first := resolver.ResolveRoute(models.RoleTeacher, "POST", "/admin/users")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, resolver.ResolveRoute(models.RoleTeacher, "POST", "/admin/users"))
	}
}

func TestHasPathPrefix(t *testing.T) {
	assert.True(t, hasPathPrefix("/admin", "/admin"))
	assert.True(t, hasPathPrefix("/admin/users", "/admin"))
	assert.False(t, hasPathPrefix("/administrator", "/admin"))
	assert.False(t, hasPathPrefix("/courses", "/admin"))
}
