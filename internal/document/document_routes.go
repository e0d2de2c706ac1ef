package document

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	documents := r.Group("/documents")
	{
		documents.GET("/", h.List)
		documents.POST("/", h.Create)
		documents.GET("/:id/", h.GetByID)
		documents.PATCH("/:id/", h.Update)
		documents.DELETE("/:id/", h.Delete)
	}
}
