package leave

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

type LeaveRequest struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey"`
	OrganizationID  uuid.UUID     `gorm:"type:uuid;not null;index:idx_leave_requests_org_status"`
	EmployeeID      uuid.UUID     `gorm:"type:uuid;not null;index:idx_leave_requests_employee_dates"`
	Employee        *EmployeeRef  `gorm:"foreignKey:EmployeeID;references:ID"`
	LeaveTypeID     uuid.UUID     `gorm:"type:uuid;not null;index"`
	LeaveType       *LeaveTypeRef `gorm:"foreignKey:LeaveTypeID;references:ID"`
	StartDate       time.Time     `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate         time.Time     `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	TotalDays       int           `gorm:"not null;default:0"`
	Reason          string        `gorm:"type:text"`
	Status          Status        `gorm:"size:20;not null;default:'pending';index:idx_leave_requests_org_status"`
	ApprovedBy      *uuid.UUID    `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	RejectionReason string    `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (l *LeaveRequest) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// EmployeeRef is the slice of the employees table the workflow reads.
type EmployeeRef struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID  `gorm:"type:uuid"`
	UserID         *uuid.UUID `gorm:"type:uuid"`
	ManagerID      *uuid.UUID `gorm:"type:uuid"`
	FirstName      string
	LastName       string
}

func (EmployeeRef) TableName() string {
	return "employees"
}

func (e EmployeeRef) FullName() string {
	return e.FirstName + " " + e.LastName
}

type LeaveTypeRef struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name  string
	Code  string
	Color string
}

func (LeaveTypeRef) TableName() string {
	return "leave_types"
}

// TotalDays counts calendar days in [start, end], both ends included.
func TotalDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}
