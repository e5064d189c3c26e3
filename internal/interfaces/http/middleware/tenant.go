package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/inventra/backend/internal/infrastructure/logger"
)

// TenantHeader lets development clients supply a tenant without a token
const TenantHeader = "X-Tenant-ID"

// TenantContextKey is the gin context key the resolved tenant is stored under
const TenantContextKey = "tenant_id"

// Tenant resolves the caller's tenant, preferring the JWT claim and falling
// back to the X-Tenant-ID header, and threads it into the request context so
// log lines downstream carry it. Requests without a resolvable tenant pass
// through; handlers reject them when they need one.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := GetJWTTenantID(c)
		if tenantID == "" {
			tenantID = c.GetHeader(TenantHeader)
		}

		if tenantID != "" {
			if _, err := uuid.Parse(tenantID); err == nil {
				c.Set(TenantContextKey, tenantID)
				ctx := logger.WithTenantID(c.Request.Context(), tenantID)
				c.Request = c.Request.WithContext(ctx)
			}
		}

		c.Next()
	}
}

// GetTenantID returns the resolved tenant ID, or uuid.Nil with false
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString(TenantContextKey)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
