package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orderhub/backend/internal/infrastructure/auth"
	"github.com/orderhub/backend/internal/infrastructure/logger"
	"github.com/orderhub/backend/internal/interfaces/http/dto"
)

const claimsKey = "jwt_claims"

var (
	errNoAuthorization = errors.New("missing authorization header")
	errNotBearer       = errors.New("authorization header is not a bearer token")
)

// authFailures maps token errors to the code and message returned with 401.
// Anything unlisted, including a missing header, is ERR_TOKEN_INVALID.
var authFailures = []struct {
	err     error
	code    string
	message string
}{
	{auth.ErrExpiredToken, dto.ErrCodeTokenExpired, "Token has expired"},
	{auth.ErrTokenNotYetValid, dto.ErrCodeTokenInvalid, "Token is not yet valid"},
}

// JWTAuthMiddleware admits requests carrying a valid operator access token in
// the Authorization header. The claims are kept on the gin context and the
// operator is added to the request context for logging.
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticate(c, jwtService)
		if err != nil {
			rejectToken(c, err)
			return
		}

		c.Set(claimsKey, claims)
		c.Request = c.Request.WithContext(logger.With(c.Request.Context(), logger.FieldOperator, claims.Operator))
		c.Next()
	}
}

func authenticate(c *gin.Context, jwtService *auth.JWTService) (*auth.Claims, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, errNoAuthorization
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, errNotBearer
	}
	return jwtService.ValidateAccessToken(strings.TrimSpace(token))
}

func rejectToken(c *gin.Context, err error) {
	code, message := dto.ErrCodeTokenInvalid, "Invalid token"
	for _, f := range authFailures {
		if errors.Is(err, f.err) {
			code, message = f.code, f.message
			break
		}
	}

	logger.L(c.Request.Context()).Warn("Authentication failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("code", code),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(code, message, getRequestID(c)))
}

// GetJWTClaims returns the claims JWTAuthMiddleware accepted, or nil.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetJWTOperator returns the authenticated operator, or "".
func GetJWTOperator(c *gin.Context) string {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.Operator
	}
	return ""
}

// GetJWTRole returns the authenticated operator's role, or "".
func GetJWTRole(c *gin.Context) auth.Role {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.Role
	}
	return ""
}
