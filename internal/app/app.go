package app

import (
	"go-hrms/internal/config"
	"go-hrms/internal/middleware"
	"go-hrms/internal/shared/connection"
	"go-hrms/internal/shared/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects the database and Redis, migrates the schema and mounts
// every module on router. The returned cleanup closes both connections.
func BuildApp(router *gin.Engine, cfg *config.Config, logger *zap.Logger) (func(), error) {
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	rdb, err := connection.ConnectRedisWithRetry(cfg.Redis, logger)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logger.Info("redis connection established")

	cleanup := func() {
		_ = rdb.Close()
		_ = sqlDB.Close()
	}

	if err := Migrate(gormDB); err != nil {
		cleanup()
		return nil, err
	}

	m := metrics.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.ContextLogger(logger),
		m.Middleware(),
	)

	err = registerModules(router, dependencies{
		cfg:     cfg,
		db:      sqlDB,
		gormDB:  gormDB,
		rdb:     rdb,
		metrics: m,
		logger:  logger,
	})
	if err != nil {
		cleanup()
		return nil, err
	}
	return cleanup, nil
}
