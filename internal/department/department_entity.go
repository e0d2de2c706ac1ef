package department

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Department struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_departments_org_name"`
	Name           string         `gorm:"size:255;not null;uniqueIndex:idx_departments_org_name"`
	Code           string         `gorm:"size:50"`
	Description    string         `gorm:"type:text"`
	ParentID       *uuid.UUID     `gorm:"type:uuid;index"`
	ManagerID      *uuid.UUID     `gorm:"type:uuid"`
	IsActive       bool           `gorm:"not null"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// EmployeeSummary is the department roster row.
type EmployeeSummary struct {
	ID         uuid.UUID
	EmployeeID string
	FirstName  string
	LastName   string
	Email      string
	Position   string
	Status     string
}
