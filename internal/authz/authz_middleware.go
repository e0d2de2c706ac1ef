package authz

import (
	authzerrors "go-hrms/internal/authz/errors"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// ContextRole is the gin key holding the role resolved by RequireCapability.
const ContextRole = "organization_role"

// RequireCapability gates a route on cap within the organization named by the
// request (see middleware.OrganizationContext).
func RequireCapability(a Authorizer, cap Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		p, ok := contextutil.GetPrincipal(ctx)
		if !ok {
			response.AbortWithError(c, authzerrors.ErrUnauthenticated)
			return
		}

		orgID, err := ParseOrganization(contextutil.GetOrganizationID(ctx))
		if err != nil {
			response.AbortWithError(c, err)
			return
		}

		role, err := a.Authorize(ctx, p, orgID, cap)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}

		c.Set(ContextRole, string(role))
		c.Next()
	}
}
