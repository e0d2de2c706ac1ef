package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNoMembership is returned when the principal has no active membership in
// the requested organization.
var ErrNoMembership = errors.New("tenant: no active membership")

// Directory resolves which organizations a principal belongs to and the role
// held in each. Lookups always hit storage; roles are never cached across
// organizations or requests.
type Directory interface {
	ActiveMembership(ctx context.Context, userID, organizationID uuid.UUID) (*Membership, error)
	ActiveMemberships(ctx context.Context, userID uuid.UUID) ([]Membership, error)
}

type directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) Directory {
	return &directory{db: db}
}

func (d *directory) ActiveMembership(ctx context.Context, userID, organizationID uuid.UUID) (*Membership, error) {
	var m Membership
	err := d.db.WithContext(ctx).
		Where("user_id = ? AND organization_id = ? AND is_active = ?", userID, organizationID, true).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoMembership
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (d *directory) ActiveMemberships(ctx context.Context, userID uuid.UUID) ([]Membership, error) {
	var memberships []Membership
	err := d.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("joined_at ASC").
		Find(&memberships).Error
	return memberships, err
}
