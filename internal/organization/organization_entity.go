package organization

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Plan string

const (
	PlanFree         Plan = "free"
	PlanStarter      Plan = "starter"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanStarter, PlanProfessional, PlanEnterprise:
		return true
	}
	return false
}

// Organization is the tenant root. It is deactivated, never deleted.
type Organization struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name         string         `gorm:"type:varchar(200);not null;uniqueIndex:idx_organizations_name"`
	Slug         string         `gorm:"type:varchar(200);not null;uniqueIndex:idx_organizations_slug"`
	Description  string         `gorm:"type:text"`
	PrimaryColor string         `gorm:"type:varchar(7);not null;default:'#4F46E5'"`
	Plan         Plan           `gorm:"type:varchar(20);not null;default:'free'"`
	MaxEmployees int            `gorm:"not null;default:10"`
	Email        string         `gorm:"type:varchar(255)"`
	Phone        string         `gorm:"type:varchar(20)"`
	Address      string         `gorm:"type:text"`
	Website      string         `gorm:"type:varchar(255)"`
	Timezone     string         `gorm:"type:varchar(50);not null;default:'UTC'"`
	DateFormat   string         `gorm:"type:varchar(20);not null;default:'DD/MM/YYYY'"`
	Currency     string         `gorm:"type:varchar(3);not null;default:'EUR'"`
	Settings     datatypes.JSON `gorm:"type:jsonb"`
	IsActive     bool           `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Organization) TableName() string {
	return "organizations"
}

func (o *Organization) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Stats are the dashboard counters of one organization.
type Stats struct {
	TotalEmployees   int64
	TotalDepartments int64
	PendingLeaves    int64
	ActiveMembers    int64
}
