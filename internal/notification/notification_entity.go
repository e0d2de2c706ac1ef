package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EventID        string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_notifications_event_id"`
	RecipientID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_recipient_read,priority:1"`
	OrganizationID *uuid.UUID `gorm:"type:uuid;index"`
	SenderID       *uuid.UUID `gorm:"type:uuid"`
	Kind           string     `gorm:"type:varchar(20);not null;default:'system'"`
	Title          string     `gorm:"type:varchar(200);not null"`
	Message        string     `gorm:"type:text;not null"`
	Link           string     `gorm:"type:varchar(255)"`
	IsRead         bool       `gorm:"not null;default:false;index:idx_notifications_recipient_read,priority:2"`
	CreatedAt      time.Time  `gorm:"not null"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
