package employee

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusOnLeave    Status = "on_leave"
	StatusSuspended  Status = "suspended"
	StatusTerminated Status = "terminated"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusOnLeave, StatusSuspended, StatusTerminated:
		return true
	}
	return false
}

type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "full_time"
	EmploymentPartTime EmploymentType = "part_time"
	EmploymentContract EmploymentType = "contract"
	EmploymentIntern   EmploymentType = "intern"
)

func (t EmploymentType) Valid() bool {
	switch t {
	case EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentIntern:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)

func (g Gender) Valid() bool {
	switch g {
	case "", GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

const (
	DefaultAnnualLeaveDays = 25
	DefaultSickLeaveDays   = 10
	DefaultSalaryCurrency  = "EUR"
)

// Employee is the HR record of a person in one organization. UserID links the
// record to a login principal; a principal has at most one employee profile.
type Employee struct {
	ID              uuid.UUID           `gorm:"type:uuid;primaryKey"`
	OrganizationID  uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_employees_org_employee_id"`
	UserID          *uuid.UUID          `gorm:"type:uuid;uniqueIndex:idx_employees_user_id"`
	DepartmentID    *uuid.UUID          `gorm:"type:uuid;index"`
	ManagerID       *uuid.UUID          `gorm:"type:uuid;index"`
	EmployeeID      string              `gorm:"size:50;not null;uniqueIndex:idx_employees_org_employee_id"`
	FirstName       string              `gorm:"size:120;not null"`
	LastName        string              `gorm:"size:120;not null"`
	Email           string              `gorm:"size:255;not null;uniqueIndex:idx_employees_email"`
	Phone           string              `gorm:"size:20"`
	DateOfBirth     *time.Time          `gorm:"type:date"`
	Gender          Gender              `gorm:"size:1"`
	AddressLine1    string              `gorm:"size:255"`
	AddressLine2    string              `gorm:"size:255"`
	City            string              `gorm:"size:100"`
	State           string              `gorm:"size:100"`
	PostalCode      string              `gorm:"size:20"`
	Country         string              `gorm:"size:100"`
	Position        string              `gorm:"size:120;not null"`
	EmploymentType  EmploymentType      `gorm:"size:20;not null;default:'full_time'"`
	HireDate        time.Time           `gorm:"type:date;not null"`
	TerminationDate *time.Time          `gorm:"type:date"`
	Salary          decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	SalaryCurrency  string              `gorm:"size:3;not null;default:'EUR'"`
	AnnualLeaveDays int                 `gorm:"not null;default:25"`
	SickLeaveDays   int                 `gorm:"not null;default:10"`
	Status          Status              `gorm:"size:20;not null;default:'active'"`
	IsActive        bool                `gorm:"not null"`
	CreatedAt       time.Time           `gorm:"autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt      `gorm:"index"`
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// MonthlySalary is the annual salary spread over twelve months, zero when
// unset.
func (e *Employee) MonthlySalary() decimal.Decimal {
	if !e.Salary.Valid {
		return decimal.Zero
	}
	return e.Salary.Decimal.Div(decimal.NewFromInt(12)).Round(2)
}
