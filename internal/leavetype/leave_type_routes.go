package leavetype

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	types := r.Group("/leave-types")
	{
		types.GET("/", h.List)
		types.POST("/", h.Create)
		types.GET("/:id/", h.GetByID)
		types.PATCH("/:id/", h.Update)
		types.DELETE("/:id/", h.Delete)
	}
}
