package organization

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

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, org *Organization) error
	AddMember(ctx context.Context, m *tenant.Membership) error
	GetByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	List(ctx context.Context, v tenant.Visibility, search string) ([]Organization, error)
	Update(ctx context.Context, org *Organization) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, id uuid.UUID) (Stats, error)
	CountPresent(ctx context.Context, id uuid.UUID, day time.Time) (int64, error)
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

func (r *repository) Create(ctx context.Context, org *Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *repository) AddMember(ctx context.Context, m *tenant.Membership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	var org Organization
	err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error
	return &org, err
}

func (r *repository) List(ctx context.Context, v tenant.Visibility, search string) ([]Organization, error) {
	var orgs []Organization
	q := r.db.WithContext(ctx).Scopes(tenant.ScopeColumn("id", v))
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	err := q.Order("name ASC").Find(&orgs).Error
	return orgs, err
}

func (r *repository) Update(ctx context.Context, org *Organization) error {
	return r.db.WithContext(ctx).Save(org).Error
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&Organization{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *repository) Stats(ctx context.Context, id uuid.UUID) (Stats, error) {
	var s Stats
	db := r.db.WithContext(ctx)

	if err := db.Table("employees").
		Where("organization_id = ? AND is_active = ? AND deleted_at IS NULL", id, true).
		Count(&s.TotalEmployees).Error; err != nil {
		return Stats{}, err
	}
	if err := db.Table("departments").
		Where("organization_id = ? AND is_active = ? AND deleted_at IS NULL", id, true).
		Count(&s.TotalDepartments).Error; err != nil {
		return Stats{}, err
	}
	if err := db.Table("leave_requests").
		Where("organization_id = ? AND status = ?", id, "pending").
		Count(&s.PendingLeaves).Error; err != nil {
		return Stats{}, err
	}
	if err := db.Table("memberships").
		Where("organization_id = ? AND is_active = ?", id, true).
		Count(&s.ActiveMembers).Error; err != nil {
		return Stats{}, err
	}
	return s, nil
}

func (r *repository) CountPresent(ctx context.Context, id uuid.UUID, day time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("attendances").
		Where("organization_id = ? AND date = ? AND status = ?", id, day, "present").
		Count(&n).Error
	return n, err
}
