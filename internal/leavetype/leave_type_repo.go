package leavetype

import (
	"context"
	"database/sql"

	"go-hrms/internal/shared/connection"
	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, lt *LeaveType) error
	List(ctx context.Context, v tenant.Visibility, isActive *bool) ([]LeaveType, error)
	GetByID(ctx context.Context, id uuid.UUID) (*LeaveType, error)
	Update(ctx context.Context, lt *LeaveType) error
	Delete(ctx context.Context, id uuid.UUID) error
	InUse(ctx context.Context, id uuid.UUID) (bool, error)
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

// Create writes every column so that false flags are not replaced by their
// column defaults.
func (r *repository) Create(ctx context.Context, lt *LeaveType) error {
	return r.db.WithContext(ctx).Select("*").Create(lt).Error
}

func (r *repository) List(ctx context.Context, v tenant.Visibility, isActive *bool) ([]LeaveType, error) {
	q := r.db.WithContext(ctx).Scopes(tenant.Scope(v))
	if isActive != nil {
		q = q.Where("is_active = ?", *isActive)
	}
	var types []LeaveType
	err := q.Order("name ASC").Find(&types).Error
	return types, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*LeaveType, error) {
	var lt LeaveType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&lt).Error; err != nil {
		return nil, err
	}
	return &lt, nil
}

func (r *repository) Update(ctx context.Context, lt *LeaveType) error {
	return r.db.WithContext(ctx).Save(lt).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&LeaveType{}).Error
}

func (r *repository) InUse(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("leave_requests").
		Where("leave_type_id = ?", id).
		Count(&n).Error
	return n > 0, err
}
