package auth

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RegisterRoutes mounts the public token endpoints on public and the
// authenticated ones on secured.
func RegisterRoutes(public, secured *gin.RouterGroup, handler *Handler, perSecond float64, burst int) {
	limit := middleware.RateLimitByIP(rate.Limit(perSecond), burst)

	auth := public.Group("/auth")
	{
		auth.POST("/token/", limit, handler.Token)
		auth.POST("/token/refresh/", limit, handler.Refresh)
		auth.POST("/register/", limit, handler.Register)
	}

	secured.GET("/auth/me/", middleware.RateLimitByUser(2, 5), handler.Me)
}
