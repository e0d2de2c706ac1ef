package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports 200 when the database and Redis answer a ping and
// 503 otherwise, naming each failed dependency.
func HealthHandler(db pinger, rdb redis.Cmdable, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("app.health")
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := map[string]string{}

		if err := db.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks["database"] = "unhealthy"
			log.Error("database health check failed", zap.Error(err))
		} else {
			checks["database"] = "healthy"
		}

		if err := rdb.Ping(ctx).Err(); err != nil {
			status = http.StatusServiceUnavailable
			checks["redis"] = "unhealthy"
			log.Error("redis health check failed", zap.Error(err))
		} else {
			checks["redis"] = "healthy"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "unavailable"
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}
