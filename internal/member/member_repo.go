package member

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go-hrms/internal/shared/connection"
	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemberRow is a membership joined with its user.
type MemberRow struct {
	tenant.Membership
	Username  string
	Email     string
	FirstName string
	LastName  string
}

type ListFilter struct {
	OrganizationIDs []uuid.UUID // nil means every organization
	Role            tenant.Role
	IsActive        *bool
	Search          string
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	List(ctx context.Context, f ListFilter) ([]MemberRow, error)
	GetByID(ctx context.Context, id uuid.UUID) (*MemberRow, error)
	FindUserIDByEmail(ctx context.Context, email string) (uuid.UUID, error)
	Create(ctx context.Context, m *tenant.Membership) error
	Update(ctx context.Context, m *tenant.Membership) error
	CountActiveOwners(ctx context.Context, organizationID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.BindTx(r.db, tx)}
}

func (r *repository) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("memberships").
		Select("memberships.*, users.username, users.email, users.first_name, users.last_name").
		Joins("JOIN users ON users.id = memberships.user_id")
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]MemberRow, error) {
	q := r.base(ctx)
	if f.OrganizationIDs != nil {
		if len(f.OrganizationIDs) == 0 {
			return []MemberRow{}, nil
		}
		q = q.Where("memberships.organization_id IN ?", f.OrganizationIDs)
	}
	if f.Role != "" {
		q = q.Where("memberships.role = ?", f.Role)
	}
	if f.IsActive != nil {
		q = q.Where("memberships.is_active = ?", *f.IsActive)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(users.username) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(users.first_name) LIKE ? OR LOWER(users.last_name) LIKE ?",
			like, like, like, like)
	}

	var rows []MemberRow
	err := q.Order("memberships.joined_at ASC").Scan(&rows).Error
	return rows, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*MemberRow, error) {
	var row MemberRow
	res := r.base(ctx).Where("memberships.id = ?", id).Limit(1).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (r *repository) FindUserIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("users").
		Where("LOWER(email) = ? AND deleted_at IS NULL", strings.ToLower(strings.TrimSpace(email))).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return uuid.Nil, err
	}
	if len(ids) == 0 {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return ids[0], nil
}

func (r *repository) Create(ctx context.Context, m *tenant.Membership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *repository) Update(ctx context.Context, m *tenant.Membership) error {
	return r.db.WithContext(ctx).
		Model(&tenant.Membership{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"role":       m.Role,
			"is_active":  m.IsActive,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repository) CountActiveOwners(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&tenant.Membership{}).
		Where("organization_id = ? AND role = ? AND is_active = ?", organizationID, tenant.RoleOwner, true).
		Count(&n).Error
	return n, err
}
