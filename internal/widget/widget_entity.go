package widget

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a dated reminder shown on the dashboard.
type Event struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index:idx_events_org_start"`
	Title          string    `gorm:"size:200;not null"`
	Description    string    `gorm:"type:text"`
	StartTime      time.Time `gorm:"not null;index:idx_events_org_start"`
	EndTime        *time.Time
	Link           string    `gorm:"size:500"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type ProjectStatus string

const (
	ProjectTodo       ProjectStatus = "todo"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectDone       ProjectStatus = "done"
)

const (
	DefaultProjectIcon  = "🚀"
	DefaultProjectColor = "blue"
)

type Project struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID     `gorm:"type:uuid;not null;index"`
	Name           string        `gorm:"size:200;not null"`
	Description    string        `gorm:"type:text"`
	DueDate        time.Time     `gorm:"type:date;not null"`
	Status         ProjectStatus `gorm:"size:20;not null;default:'todo'"`
	IconEmoji      string        `gorm:"size:10;not null"`
	Color          string        `gorm:"size:20;not null"`
	CreatedAt      time.Time     `gorm:"autoCreateTime"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
