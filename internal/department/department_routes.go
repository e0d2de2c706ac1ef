package department

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the department endpoints. Capability checks run in the
// service against the department's organization.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	departments := r.Group("/departments")
	{
		departments.GET("/", h.List)
		departments.POST("/", h.Create)
		departments.GET("/:id/", h.GetByID)
		departments.PATCH("/:id/", h.Update)
		departments.DELETE("/:id/", h.Delete)
		departments.GET("/:id/employees/", h.Employees)
	}
}
