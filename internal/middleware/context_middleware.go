package middleware

import (
	"strings"

	"go-hrms/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const OrganizationHeader = "X-Organization-ID"

// ContextLogger attaches a request scoped logger carrying the request,
// user and organization ids. It must run after AuthMiddleware and
// OrganizationContext to pick those up.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		meta := contextutil.ExtractMetadata(ctx)

		reqLogger := logger.With(
			zap.String("request_id", meta.RequestID),
			zap.String("user_id", meta.UserID),
		)
		if meta.OrganizationID != "" {
			reqLogger = reqLogger.With(zap.String("organization_id", meta.OrganizationID))
		}

		c.Request = c.Request.WithContext(contextutil.WithLogger(ctx, reqLogger))
		c.Next()
	}
}

// OrganizationContext reads the active organization from the
// X-Organization-ID header, falling back to the organization query param.
// Validation of the value is left to the authorizer.
func OrganizationContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := strings.TrimSpace(c.GetHeader(OrganizationHeader))
		if orgID == "" {
			orgID = strings.TrimSpace(c.Query("organization"))
		}

		if orgID != "" {
			c.Set("organization_id", orgID)
			c.Request = c.Request.WithContext(contextutil.WithOrganizationID(c.Request.Context(), orgID))
		}
		c.Next()
	}
}
