package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bytecrate/itemgraph/internal/platform/logger"
	"github.com/bytecrate/itemgraph/internal/requestdata"
)

type TenantMiddleware struct {
	log *logger.Logger
}

func NewTenantMiddleware(log *logger.Logger) *TenantMiddleware {
	middlewareLog := log.With("middleware", "TenantMiddleware")
	return &TenantMiddleware{log: middlewareLog}
}

// RequireTenant scopes the request to the tenant named by the X-Tenant-ID
// header. Requests without a valid tenant never reach the data layer.
func (tm *TenantMiddleware) RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Tenant-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing X-Tenant-ID header"})
			return
		}
		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid X-Tenant-ID header"})
			return
		}
		ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{TenantID: tenantID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
