package authz

import "github.com/gin-gonic/gin"

// RegisterRoutes expects r to already carry authentication and organization
// context middleware.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	group := r.Group("/authz")
	{
		group.GET("/capabilities/", RequireCapability(handler.authorizer, CapabilityMember), handler.Capabilities)
	}
}
