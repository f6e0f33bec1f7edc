package access

import (
	"fmt"
	"sort"
	"strings"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
)

// Decision is the outcome of a route access check.
type Decision struct {
	Allowed bool
	// Rule identifies the restriction or requirement that produced a denial,
	// for audit logging. Empty on allow.
	Rule   string
	Reason string
}

// PrefixRestriction limits a whole path subtree to a set of roles. It is
// evaluated before any capability requirement: a role outside the allowlist is
// denied regardless of what the capability table would say.
type PrefixRestriction struct {
	Prefix string
	Roles  []models.UserRole
}

// RouteRule declares the capability required for a method+path pair. Path may
// be an exact route template or, with MatchPrefix set, a path prefix.
type RouteRule struct {
	Method      string
	Path        string
	MatchPrefix bool
	Requires    Capability
}

// Resolver answers route-level access questions from static configuration.
// It performs no I/O and is safe for concurrent use.
type Resolver struct {
	table        *Table
	restrictions []PrefixRestriction
	rules        []RouteRule
}

// NewResolver builds a resolver over the given table and static route
// declarations. Prefix rules are ordered longest-first so the most specific
// declaration wins.
func NewResolver(table *Table, restrictions []PrefixRestriction, rules []RouteRule) *Resolver {
	ordered := make([]RouteRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Path) > len(ordered[j].Path)
	})
	restr := make([]PrefixRestriction, len(restrictions))
	copy(restr, restrictions)
	return &Resolver{table: table, restrictions: restr, rules: ordered}
}

// DefaultResolver wires the restrictions and capability requirements for the
// API's route map. Paths are route templates relative to the API prefix.
func DefaultResolver(table *Table) *Resolver {
	restrictions := []PrefixRestriction{
		{Prefix: "/admin", Roles: []models.UserRole{models.RoleAdmin, models.RoleTeacher}},
		{Prefix: "/teacher", Roles: []models.UserRole{models.RoleTeacher, models.RoleAdmin}},
		{Prefix: "/student", Roles: []models.UserRole{models.RoleStudent, models.RoleAdmin}},
	}

	rules := []RouteRule{
		{Method: "POST", Path: "/admin/users", Requires: CapUsersManage},
		{Method: "PUT", Path: "/admin/users/:id", Requires: CapUsersManage},
		{Method: "DELETE", Path: "/admin/users/:id", Requires: CapUsersManage},
		{Method: "POST", Path: "/admin/groups", Requires: CapGroupsManage},
		{Method: "PUT", Path: "/admin/groups/:id", Requires: CapGroupsManage},
		{Method: "DELETE", Path: "/admin/groups/:id", Requires: CapGroupsManage},
		{Method: "POST", Path: "/admin/groups/:id/members", Requires: CapGroupsManage},
		{Method: "DELETE", Path: "/admin/groups/:id/members/:userId", Requires: CapGroupsManage},
		{Method: "POST", Path: "/admin/groups/:id/schedule/generate", Requires: CapScheduleGenerate},
		{Method: "POST", Path: "/admin/groups/:id/schedule/rules", Requires: CapScheduleGenerate},
		{Method: "DELETE", Path: "/admin/groups/:id/schedule/rules/:ruleId", Requires: CapScheduleGenerate},
		{Method: "POST", Path: "/admin/events", Requires: CapEventsManage},
		{Method: "PUT", Path: "/admin/events/:id", Requires: CapEventsManage},
		{Method: "DELETE", Path: "/admin/events/:id", Requires: CapEventsManage},
		{Method: "POST", Path: "/admin/payments", Requires: CapPaymentsManage},
		{Method: "POST", Path: "/admin/payments/:id/pay", Requires: CapPaymentsManage},
		{Method: "GET", Path: "/admin/payments", Requires: CapPaymentsManage},
		{Method: "POST", Path: "/courses", Requires: CapCoursesCreate},
		{Method: "PUT", Path: "/courses/:id", Requires: CapCoursesManage},
		{Method: "DELETE", Path: "/courses/:id", Requires: CapCoursesManage},
		{Method: "POST", Path: "/courses/:id/modules", Requires: CapCoursesManage},
		{Method: "POST", Path: "/modules/:id/lessons", Requires: CapLessonsManage},
		{Method: "PUT", Path: "/lessons/:id", Requires: CapLessonsManage},
		{Method: "POST", Path: "/quizzes", Requires: CapQuizzesManage},
		{Method: "POST", Path: "/quizzes/:id/submit", Requires: CapQuizzesSubmit},
		{Method: "POST", Path: "/assignments", Requires: CapQuizzesManage},
		{Method: "POST", Path: "/assignments/:id/submit", Requires: CapAssignmentsSubmit},
		{Method: "POST", Path: "/assignments/:id/grade", Requires: CapAssignmentsGrade},
		{Method: "POST", Path: "/groups/:id/chat", Requires: CapChatPost},
		{Method: "POST", Path: "/notifications/broadcast", Requires: CapNotificationsSend},
	}

	return NewResolver(table, restrictions, rules)
}

// ResolveRoute decides whether the role may call method+path. The path is the
// route template relative to the API prefix (e.g. "/admin/users/:id").
//
// Restricted prefixes are checked first and short-circuit: failing the prefix
// allowlist denies immediately, before any capability lookup. A passing role
// is then subject to the capability requirement declared for the route, if
// any. Undeclared routes default to allow for any authenticated role.
func (r *Resolver) ResolveRoute(role models.UserRole, method, path string) Decision {
	for _, restriction := range r.restrictions {
		if !hasPathPrefix(path, restriction.Prefix) {
			continue
		}
		if !roleIn(role, restriction.Roles) {
			return Decision{
				Allowed: false,
				Rule:    fmt.Sprintf("prefix:%s", restriction.Prefix),
				Reason:  fmt.Sprintf("role %s is not allowed under %s", role, restriction.Prefix),
			}
		}
		break
	}

	if rule, ok := r.lookupRule(method, path); ok {
		if !r.table.Has(role, rule.Requires) {
			return Decision{
				Allowed: false,
				Rule:    fmt.Sprintf("capability:%s", rule.Requires),
				Reason:  fmt.Sprintf("role %s lacks capability %s", role, rule.Requires),
			}
		}
	}

	return Decision{Allowed: true}
}

func (r *Resolver) lookupRule(method, path string) (RouteRule, bool) {
	for _, rule := range r.rules {
		if rule.Method != method {
			continue
		}
		if rule.MatchPrefix {
			if hasPathPrefix(path, rule.Path) {
				return rule, true
			}
			continue
		}
		if rule.Path == path {
			return rule, true
		}
	}
	return RouteRule{}, false
}

func hasPathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || strings.HasPrefix(rest, "/")
}

func roleIn(role models.UserRole, roles []models.UserRole) bool {
	for _, candidate := range roles {
		if role == candidate {
			return true
		}
	}
	return false
}
