package organization

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the organization endpoints on an authenticated group.
// Capability checks run in the service against the organization in the path.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	orgs := r.Group("/organizations")
	{
		orgs.GET("/", handler.List)
		orgs.POST("/", middleware.RateLimitByUser(0.2, 2), handler.Create)
		orgs.GET("/:id/", handler.GetByID)
		orgs.PATCH("/:id/", middleware.RateLimitByUser(1, 5), handler.Update)
		orgs.POST("/:id/deactivate/", middleware.RateLimitByUser(0.1, 1), handler.Deactivate)
		orgs.GET("/:id/stats/", middleware.RateLimitByUser(2, 10), handler.Stats)
		orgs.GET("/:id/activity_chart/", middleware.RateLimitByUser(2, 10), handler.ActivityChart)
	}
}
