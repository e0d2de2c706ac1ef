package payroll

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RegisterRoutes mounts the payroll endpoints. Generation is guarded by the
// Idempotency-Key middleware when rdb is set.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, rdb redis.Cmdable) {
	payrolls := r.Group("/payrolls")
	{
		payrolls.GET("/", h.List)
		payrolls.GET("/my_payrolls/", h.MyPayrolls)
		payrolls.GET("/:id/", h.GetByID)
		payrolls.GET("/:id/payslip/", h.Payslip)
		payrolls.POST("/generate/",
			middleware.Idempotency(rdb),
			h.Generate,
		)
		payrolls.POST("/:id/process/", h.Process)
		payrolls.POST("/:id/mark_paid/", h.MarkPaid)
	}
}
