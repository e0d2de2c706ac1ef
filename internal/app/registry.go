package app

import (
	"database/sql"

	"go-hrms/internal/attendance"
	"go-hrms/internal/auth"
	"go-hrms/internal/auth/token"
	"go-hrms/internal/authz"
	"go-hrms/internal/bootstrap"
	"go-hrms/internal/config"
	"go-hrms/internal/department"
	"go-hrms/internal/document"
	"go-hrms/internal/employee"
	"go-hrms/internal/leave"
	"go-hrms/internal/leavetype"
	"go-hrms/internal/member"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/middleware"
	"go-hrms/internal/notification"
	"go-hrms/internal/organization"
	"go-hrms/internal/payroll"
	"go-hrms/internal/shared/counter"
	"go-hrms/internal/shared/metrics"
	"go-hrms/internal/tenant"
	"go-hrms/internal/widget"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type dependencies struct {
	cfg     *config.Config
	db      *sql.DB
	gormDB  *gorm.DB
	rdb     *redis.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func registerModules(router *gin.Engine, deps dependencies) error {
	db, gormDB, rdb, m, logger := deps.db, deps.gormDB, deps.rdb, deps.metrics, deps.logger

	// --- Authorization core ---
	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return err
	}
	directory := tenant.NewDirectory(gormDB)
	authorizer := authz.NewEngine(directory, enforcer, logger)
	tokens := token.NewManager(deps.cfg.Auth.JWTSecret, deps.cfg.Auth.AccessTokenTTL, deps.cfg.Auth.RefreshTokenTTL)
	audit := bootstrap.NewZapAuditLogger(logger)

	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	organizationRepo := organization.NewRepository(gormDB)
	memberRepo := member.NewRepository(gormDB)
	departmentRepo := department.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	payrollRepo := payroll.NewRepository(gormDB)
	documentRepo := document.NewRepository(gormDB)
	widgetRepo := widget.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	outbox := kafka.NewEventOutbox(kafka.NewOutboxRepository(gormDB), deps.cfg.Kafka.EventsTopic)

	// --- Services ---
	authService := auth.NewService(authRepo, tokens, directory, logger)
	organizationService := organization.NewService(db, organizationRepo, authorizer, audit, logger)
	memberService := member.NewService(db, memberRepo, authorizer, logger)
	departmentService := department.NewService(db, departmentRepo, authorizer, logger)
	employeeService := employee.NewService(db, employeeRepo, counterRepo, outbox, rdb, authorizer, logger)
	leaveTypeService := leavetype.NewService(db, leaveTypeRepo, rdb, authorizer, logger)
	leaveService := leave.NewService(db, leaveRepo, employeeRepo, leaveTypeRepo, outbox, authorizer, m, logger)
	attendanceService := attendance.NewService(db, attendanceRepo, employeeRepo, authorizer, m, logger)
	payrollService := payroll.NewService(db, payrollRepo, employeeRepo, outbox, authorizer, m, logger)
	documentService := document.NewService(db, documentRepo, outbox, authorizer, logger)
	widgetService := widget.NewService(widgetRepo, authorizer, logger)
	notificationService := notification.NewService(notificationRepo, m, logger)

	// --- Routes ---
	router.GET("/health/", HealthHandler(db, rdb, logger))
	router.GET("/metrics", gin.WrapH(m.Handler()))

	public := router.Group("/api")
	// ContextLogger runs again once the user and organization are known.
	secured := router.Group("/api",
		middleware.AuthMiddleware(tokens),
		middleware.OrganizationContext(),
		middleware.ContextLogger(logger),
	)

	auth.RegisterRoutes(public, secured, auth.NewHandler(authService, logger),
		deps.cfg.RateLimit.AuthPerSecond, deps.cfg.RateLimit.AuthBurst)
	authz.RegisterRoutes(secured, authz.NewHandler(authorizer, logger))
	organization.RegisterRoutes(secured, organization.NewHandler(organizationService, logger))
	member.RegisterRoutes(secured, member.NewHandler(memberService, logger))
	department.RegisterRoutes(secured, department.NewHandler(departmentService, logger))
	employee.RegisterRoutes(secured, employee.NewHandler(employeeService, logger))
	leavetype.RegisterRoutes(secured, leavetype.NewHandler(leaveTypeService, logger))
	leave.RegisterRoutes(secured, leave.NewHandler(leaveService, logger))
	attendance.RegisterRoutes(secured, attendance.NewHandler(attendanceService, logger))
	payroll.RegisterRoutes(secured, payroll.NewHandler(payrollService, logger), rdb)
	document.RegisterRoutes(secured, document.NewHandler(documentService, logger))
	widget.RegisterRoutes(secured, widget.NewHandler(widgetService, logger))
	notification.RegisterRoutes(secured, notification.NewHandler(notificationService, logger))

	return nil
}
