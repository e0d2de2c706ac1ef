package document

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryContract    Category = "contract"
	CategoryID          Category = "id"
	CategoryCertificate Category = "certificate"
	CategoryPayslip     Category = "payslip"
	CategoryOther       Category = "other"
)

// Document references a file stored outside the database. Only the blob
// location and descriptive data are kept here.
type Document struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index"`
	EmployeeID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Employee       *EmployeeRef   `gorm:"foreignKey:EmployeeID;references:ID"`
	Title          string         `gorm:"size:200;not null"`
	Category       Category       `gorm:"size:20;not null"`
	FileURL        string         `gorm:"size:500;not null"`
	FileSize       int64          `gorm:"not null;default:0"`
	Description    string         `gorm:"type:text"`
	Metadata       datatypes.JSON `gorm:"type:jsonb"`
	UploadedBy     *uuid.UUID     `gorm:"type:uuid"`
	UploadedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type EmployeeRef struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID  `gorm:"type:uuid"`
	UserID         *uuid.UUID `gorm:"type:uuid"`
	Code           string     `gorm:"column:employee_id"`
	FirstName      string
	LastName       string
}

func (EmployeeRef) TableName() string {
	return "employees"
}

func (e EmployeeRef) FullName() string {
	return e.FirstName + " " + e.LastName
}
