package employee

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	employees := r.Group("/employees")
	{
		employees.GET("/",
			middleware.RateLimitByUser(3, 10),
			handler.List,
		)

		employees.GET("/options/",
			middleware.RateLimitByUser(5, 20),
			handler.Options,
		)

		employees.GET("/:id/",
			middleware.RateLimitByUser(3, 10),
			handler.GetByID,
		)

		employees.GET("/:id/subordinates/",
			middleware.RateLimitByUser(3, 10),
			handler.Subordinates,
		)

		employees.GET("/:id/leave_balance/",
			middleware.RateLimitByUser(3, 10),
			handler.LeaveBalance,
		)

		employees.POST("/",
			middleware.RateLimitByUser(0.5, 5),
			handler.Create,
		)

		employees.PATCH("/:id/",
			middleware.RateLimitByUser(0.5, 2),
			handler.Update,
		)

		employees.DELETE("/:id/",
			middleware.RateLimitByUser(0.05, 1),
			handler.Delete,
		)
	}
}
