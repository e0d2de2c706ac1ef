package attendance

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	attendances := r.Group("/attendances")
	{
		attendances.GET("/", h.List)
		attendances.GET("/my_attendance/", h.MyAttendance)
		attendances.GET("/current_status/", h.CurrentStatus)
		attendances.POST("/check_in/",
			middleware.RateLimitByUser(1, 3),
			h.CheckIn,
		)
		attendances.POST("/check_out/",
			middleware.RateLimitByUser(1, 3),
			h.CheckOut,
		)
		attendances.POST("/mark_absent/", h.MarkAbsent)
	}
}
