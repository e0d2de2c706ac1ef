package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusProcessed Status = "processed"
	StatusPaid      Status = "paid"
)

var (
	BonusRate     = decimal.RequireFromString("0.05")
	DeductionRate = decimal.RequireFromString("0.22")
)

// Payroll is one monthly pay record. (EmployeeID, Month, Year) is unique and
// the amounts are fixed when the record is generated.
type Payroll struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;index:idx_payrolls_org_period"`
	EmployeeID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_payrolls_employee_period"`
	Employee       *EmployeeRef    `gorm:"foreignKey:EmployeeID;references:ID"`
	Month          int             `gorm:"not null;uniqueIndex:idx_payrolls_employee_period;index:idx_payrolls_org_period"`
	Year           int             `gorm:"not null;uniqueIndex:idx_payrolls_employee_period;index:idx_payrolls_org_period"`
	BaseSalary     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Bonuses        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Deductions     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	NetSalary      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status         Status          `gorm:"size:20;not null;default:'draft'"`
	PaymentDate    *time.Time      `gorm:"type:date"`
	Notes          string          `gorm:"type:text"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (p *Payroll) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Period renders the pay period as MM/YYYY.
func (p *Payroll) Period() string {
	return periodLabel(p.Month, p.Year)
}

type EmployeeRef struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID         *uuid.UUID `gorm:"type:uuid"`
	Code           string     `gorm:"column:employee_id"`
	FirstName      string
	LastName       string
	Position       string
	SalaryCurrency string
}

func (EmployeeRef) TableName() string {
	return "employees"
}

func (e EmployeeRef) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Compute derives the fixed-rate bonuses and deductions for a monthly base.
func Compute(base decimal.Decimal) (bonuses, deductions, net decimal.Decimal) {
	bonuses = base.Mul(BonusRate).Round(2)
	deductions = base.Mul(DeductionRate).Round(2)
	net = base.Add(bonuses).Sub(deductions)
	return bonuses, deductions, net
}
