package leave

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	leaves := r.Group("/leaves")
	{
		leaves.GET("/", handler.List)
		leaves.GET("/:id/", handler.GetByID)
		leaves.POST("/",
			middleware.RateLimitByUser(1, 5),
			handler.Create,
		)
		leaves.POST("/:id/approve/",
			middleware.RateLimitByUser(2, 10),
			handler.Approve,
		)
		leaves.POST("/:id/reject/",
			middleware.RateLimitByUser(2, 10),
			handler.Reject,
		)
		leaves.POST("/:id/cancel/",
			middleware.RateLimitByUser(1, 5),
			handler.Cancel,
		)
	}
}
