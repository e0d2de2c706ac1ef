package member

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	members := r.Group("/members")
	{
		members.GET("/", handler.List)
		members.POST("/", middleware.RateLimitByUser(1, 5), handler.Add)
		members.GET("/:id/", handler.GetByID)
		members.PATCH("/:id/", middleware.RateLimitByUser(1, 5), handler.Update)
		members.POST("/:id/deactivate/", middleware.RateLimitByUser(1, 5), handler.Deactivate)
	}
}
