package widget

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	events := r.Group("/events")
	{
		events.GET("/", h.ListEvents)
		events.POST("/", h.CreateEvent)
		events.GET("/:id/", h.GetEvent)
		events.PATCH("/:id/", h.UpdateEvent)
		events.DELETE("/:id/", h.DeleteEvent)
	}

	projects := r.Group("/projects")
	{
		projects.GET("/", h.ListProjects)
		projects.POST("/", h.CreateProject)
		projects.GET("/:id/", h.GetProject)
		projects.PATCH("/:id/", h.UpdateProject)
		projects.DELETE("/:id/", h.DeleteProject)
	}
}
