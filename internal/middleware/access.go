package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/access"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
	appErrors "github.com/neetrino-com/neetrino-academy-sub005/pkg/errors"
	"github.com/neetrino-com/neetrino-academy-sub005/pkg/response"
)

// AccessGate evaluates the route access resolver for every authenticated
// request. A request without claims is rejected with 401; a role that fails a
// prefix restriction or lacks the route's capability gets 403, and the
// failing rule is logged for audit.
func AccessGate(resolver *access.Resolver, apiPrefix string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		path = strings.TrimPrefix(path, apiPrefix)

		decision := resolver.ResolveRoute(claims.Role, c.Request.Method, path)
		if !decision.Allowed {
			logger.Warn("route access denied",
				zap.String("user_id", claims.UserID),
				zap.String("role", string(claims.Role)),
				zap.String("method", c.Request.Method),
				zap.String("path", path),
				zap.String("rule", decision.Rule))
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, decision.Reason))
			c.Abort()
			return
		}

		c.Next()
	}
}
