package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orderhub/backend/internal/infrastructure/auth"
	"github.com/orderhub/backend/internal/infrastructure/logger"
	"github.com/orderhub/backend/internal/interfaces/http/dto"
)

// RequireRole admits operators holding one of roles. Admins pass every
// check. It must run after JWTAuthMiddleware.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims != nil && (claims.IsAdmin() || slices.Contains(roles, claims.Role)) {
			c.Next()
			return
		}

		logger.L(c.Request.Context()).Warn("Access denied",
			zap.String("role", string(GetJWTRole(c))),
			zap.Any("allowed_roles", roles),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.Fail(dto.ErrCodeForbidden, "Access denied: insufficient role", getRequestID(c)))
	}
}

// RequireAdmin admits admin tokens only
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(auth.RoleAdmin)
}
