package department

import (
	"context"
	"database/sql"
	"strings"

	"go-hrms/internal/shared/connection"
	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListFilter struct {
	ParentID *uuid.UUID
	IsActive *bool
	Search   string
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, dept *Department) error
	List(ctx context.Context, v tenant.Visibility, f ListFilter) ([]Department, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Department, error)
	Update(ctx context.Context, dept *Department) error
	Delete(ctx context.Context, id uuid.UUID) error
	EmployeeInOrganization(ctx context.Context, employeeID, organizationID uuid.UUID) (bool, error)
	ListEmployees(ctx context.Context, departmentID uuid.UUID) ([]EmployeeSummary, error)
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

func (r *repository) Create(ctx context.Context, dept *Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

func (r *repository) List(ctx context.Context, v tenant.Visibility, f ListFilter) ([]Department, error) {
	q := r.db.WithContext(ctx).Scopes(tenant.Scope(v))
	if f.ParentID != nil {
		q = q.Where("parent_id = ?", *f.ParentID)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", like, like)
	}

	var depts []Department
	err := q.Order("name ASC").Find(&depts).Error
	return depts, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Department, error) {
	var dept Department
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&dept).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *repository) Update(ctx context.Context, dept *Department) error {
	return r.db.WithContext(ctx).Save(dept).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Department{}).Error
}

func (r *repository) EmployeeInOrganization(ctx context.Context, employeeID, organizationID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("id = ? AND organization_id = ? AND deleted_at IS NULL", employeeID, organizationID).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) ListEmployees(ctx context.Context, departmentID uuid.UUID) ([]EmployeeSummary, error) {
	var rows []EmployeeSummary
	err := r.db.WithContext(ctx).
		Table("employees").
		Select("id, employee_id, first_name, last_name, email, position, status").
		Where("department_id = ? AND is_active = ? AND deleted_at IS NULL", departmentID, true).
		Order("last_name ASC, first_name ASC").
		Scan(&rows).Error
	return rows, err
}
