package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inventra/backend/internal/infrastructure/auth"
	"github.com/inventra/backend/internal/interfaces/http/dto"
)

// Context keys populated by the JWT middleware
const (
	JWTTenantIDKey = "jwt_tenant_id"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "jwt_username"

	authHeaderKey = "Authorization"
	bearerPrefix  = "Bearer "
)

// JWTConfig configures the authentication middleware
type JWTConfig struct {
	Service *auth.JWTService
	// SkipPaths bypass authentication entirely (health checks, login)
	SkipPaths []string
}

// JWTAuth validates the bearer token and stores the caller's identity on the
// gin context for the tenant middleware and handlers to pick up.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		header := c.GetHeader(authHeaderKey)
		if header == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, bearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}
		token := strings.TrimPrefix(header, bearerPrefix)
		if token == "" {
			abortUnauthorized(c, "Missing token")
			return
		}

		claims, err := cfg.Service.ValidateAccessToken(token)
		if err != nil {
			abortUnauthorized(c, "Token validation failed")
			return
		}

		c.Set(JWTTenantIDKey, claims.TenantID)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTUsernameKey, claims.Username)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	requestID := c.GetString(RequestIDContextKey)
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message, requestID))
}

// GetJWTTenantID returns the tenant ID set by JWTAuth, or ""
func GetJWTTenantID(c *gin.Context) string {
	return c.GetString(JWTTenantIDKey)
}

// GetJWTUserID returns the user ID set by JWTAuth, or ""
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}
