package attendance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half_day"
)

// Attendance is the daily record of one employee. Date is a calendar day in
// UTC; (EmployeeID, Date) is unique.
type Attendance struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID    `gorm:"type:uuid;not null;index"`
	EmployeeID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_attendances_employee_date"`
	Employee       *EmployeeRef `gorm:"foreignKey:EmployeeID;references:ID"`
	Date           time.Time    `gorm:"type:date;not null;uniqueIndex:idx_attendances_employee_date;index"`
	CheckIn        *time.Time
	CheckOut       *time.Time
	Status         Status          `gorm:"size:20;not null;default:'present'"`
	HoursWorked    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Notes          string          `gorm:"type:text"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (Attendance) TableName() string {
	return "attendances"
}

func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// IsClockedIn is true between check-in and check-out.
func (a *Attendance) IsClockedIn() bool {
	return a.CheckIn != nil && a.CheckOut == nil
}

type EmployeeRef struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    *uuid.UUID `gorm:"type:uuid"`
	Code      string     `gorm:"column:employee_id"`
	FirstName string
	LastName  string
}

func (EmployeeRef) TableName() string {
	return "employees"
}

func (e EmployeeRef) FullName() string {
	return e.FirstName + " " + e.LastName
}

// HoursBetween returns the worked time in hours rounded to two decimals.
func HoursBetween(checkIn, checkOut time.Time) decimal.Decimal {
	return decimal.NewFromFloat(checkOut.Sub(checkIn).Hours()).Round(2)
}
