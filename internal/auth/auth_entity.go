package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the login principal. It is independent of any HR employee record.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username    string    `gorm:"type:varchar(150);not null;uniqueIndex:idx_users_username"`
	Email       string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email"`
	FirstName   string    `gorm:"type:varchar(150)"`
	LastName    string    `gorm:"type:varchar(150)"`
	Password    string    `gorm:"type:varchar(255);not null"`
	IsSuperuser bool      `gorm:"not null;default:false"`
	IsActive    bool      `gorm:"not null"`
	LastLogin   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
