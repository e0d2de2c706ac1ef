package notification

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the caller's notification inbox on an authenticated
// group.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("/", handler.List)
		notifications.POST("/read_all/", handler.MarkAllRead)
		notifications.POST("/:id/read/", handler.MarkRead)
	}
}
