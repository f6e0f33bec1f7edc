package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/access"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
)

func newGatedRouter(role models.UserRole, authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	api := r.Group("/api/v1")
	if authenticated {
		api.Use(func(c *gin.Context) {
			c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1", Role: role})
		})
	}
	api.Use(AccessGate(access.DefaultResolver(access.DefaultTable()), "/api/v1", zap.NewNop()))

	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	api.GET("/admin/users", ok)
	api.POST("/admin/users", ok)
	api.POST("/admin/groups/:id/schedule/generate", ok)
	api.POST("/quizzes/:id/submit", ok)
	api.GET("/courses", ok)

	return r
}

func perform(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAccessGateRejectsAnonymous(t *testing.T) {
	r := newGatedRouter(models.RoleAdmin, false)

	w := perform(r, http.MethodGet, "/api/v1/courses")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestAccessGateDeniesStudentOnAdminPrefix(t *testing.T) {
	r := newGatedRouter(models.RoleStudent, true)

	w := perform(r, http.MethodGet, "/api/v1/admin/users")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "not allowed under /admin")
}

func TestAccessGateDeniesTeacherMissingCapability(t *testing.T) {
	r := newGatedRouter(models.RoleTeacher, true)

	w := perform(r, http.MethodPost, "/api/v1/admin/users")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "lacks capability users.manage")
}

func TestAccessGateAllowsTeacherScheduleGenerate(t *testing.T) {
	r := newGatedRouter(models.RoleTeacher, true)

	w := perform(r, http.MethodPost, "/api/v1/admin/groups/g1/schedule/generate")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccessGateAllowsStudentQuizSubmit(t *testing.T) {
	r := newGatedRouter(models.RoleStudent, true)

	w := perform(r, http.MethodPost, "/api/v1/quizzes/q1/submit")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccessGateDeniesUnknownRole(t *testing.T) {
	r := newGatedRouter(models.UserRole("AUDITOR"), true)

	w := perform(r, http.MethodPost, "/api/v1/quizzes/q1/submit")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
