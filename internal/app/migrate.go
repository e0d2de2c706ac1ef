package app

import (
	"go-hrms/internal/attendance"
	"go-hrms/internal/auth"
	"go-hrms/internal/department"
	"go-hrms/internal/document"
	"go-hrms/internal/employee"
	"go-hrms/internal/leave"
	"go-hrms/internal/leavetype"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/notification"
	"go-hrms/internal/organization"
	"go-hrms/internal/payroll"
	"go-hrms/internal/shared/counter"
	"go-hrms/internal/tenant"
	"go-hrms/internal/widget"

	"gorm.io/gorm"
)

// Models lists every persisted entity in dependency order.
func Models() []any {
	return []any{
		&auth.User{},
		&organization.Organization{},
		&tenant.Membership{},
		&counter.OrganizationCounter{},
		&department.Department{},
		&employee.Employee{},
		&leavetype.LeaveType{},
		&leave.LeaveRequest{},
		&attendance.Attendance{},
		&payroll.Payroll{},
		&document.Document{},
		&widget.Event{},
		&widget.Project{},
		&notification.Notification{},
		&kafka.OutboxEvent{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
