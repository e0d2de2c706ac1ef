package leavetype

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultColor = "#4F46E5"

type LeaveType struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_leave_types_org_code"`
	Name             string    `gorm:"size:100;not null"`
	Code             string    `gorm:"size:20;not null;uniqueIndex:idx_leave_types_org_code"`
	Description      string    `gorm:"type:text"`
	IsPaid           bool      `gorm:"not null"`
	RequiresApproval bool      `gorm:"not null"`
	MaxDaysPerYear   *int
	Color            string    `gorm:"size:7;not null;default:'#4F46E5'"`
	IsActive         bool      `gorm:"not null"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (t *LeaveType) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
