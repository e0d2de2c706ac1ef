package employee

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

type ListFilter struct {
	DepartmentID   *uuid.UUID
	Status         Status
	EmploymentType EmploymentType
	IsActive       *bool
	Search         string
}

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	List(ctx context.Context, v tenant.Visibility, f ListFilter) ([]Employee, error)
	ListOptions(ctx context.Context, organizationID uuid.UUID) ([]Employee, error)
	ListSubordinates(ctx context.Context, managerID uuid.UUID) ([]Employee, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	GetByUser(ctx context.Context, organizationID, userID uuid.UUID) (*Employee, error)
	Update(ctx context.Context, empl *Employee) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountActive(ctx context.Context, organizationID uuid.UUID) (int64, error)
	MaxEmployees(ctx context.Context, organizationID uuid.UUID) (int, error)
	DepartmentInOrganization(ctx context.Context, departmentID, organizationID uuid.UUID) (bool, error)
	ApprovedLeaveDays(ctx context.Context, employeeID uuid.UUID, from, to time.Time) (int64, error)
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

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.db.WithContext(ctx).Create(empl).Error
}

func (r *repository) List(ctx context.Context, v tenant.Visibility, f ListFilter) ([]Employee, error) {
	q := r.db.WithContext(ctx).Scopes(tenant.Scope(v))
	if f.DepartmentID != nil {
		q = q.Where("department_id = ?", *f.DepartmentID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.EmploymentType != "" {
		q = q.Where("employment_type = ?", f.EmploymentType)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(employee_id) LIKE ? OR LOWER(position) LIKE ?",
			like, like, like, like, like)
	}

	var empls []Employee
	err := q.Order("last_name ASC, first_name ASC").Find(&empls).Error
	return empls, err
}

func (r *repository) ListOptions(ctx context.Context, organizationID uuid.UUID) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Select("id, employee_id, first_name, last_name, position").
		Where("organization_id = ? AND is_active = ?", organizationID, true).
		Order("last_name ASC, first_name ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) ListSubordinates(ctx context.Context, managerID uuid.UUID) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Where("manager_id = ? AND is_active = ?", managerID, true).
		Order("last_name ASC, first_name ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Employee, error) {
	var empl Employee
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&empl).Error; err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) GetByUser(ctx context.Context, organizationID, userID uuid.UUID) (*Employee, error) {
	var empl Employee
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&empl).Error
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) Update(ctx context.Context, empl *Employee) error {
	return r.db.WithContext(ctx).Save(empl).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Employee{}).Error
}

func (r *repository) CountActive(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("organization_id = ? AND is_active = ?", organizationID, true).
		Count(&n).Error
	return n, err
}

func (r *repository) MaxEmployees(ctx context.Context, organizationID uuid.UUID) (int, error) {
	var limits []int
	err := r.db.WithContext(ctx).
		Table("organizations").
		Where("id = ? AND is_active = ?", organizationID, true).
		Limit(1).
		Pluck("max_employees", &limits).Error
	if err != nil {
		return 0, err
	}
	if len(limits) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return limits[0], nil
}

func (r *repository) DepartmentInOrganization(ctx context.Context, departmentID, organizationID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("departments").
		Where("id = ? AND organization_id = ? AND deleted_at IS NULL", departmentID, organizationID).
		Count(&n).Error
	return n > 0, err
}

// ApprovedLeaveDays sums approved leave starting in [from, to).
func (r *repository) ApprovedLeaveDays(ctx context.Context, employeeID uuid.UUID, from, to time.Time) (int64, error) {
	var total sql.NullInt64
	err := r.db.WithContext(ctx).
		Table("leave_requests").
		Select("SUM(total_days)").
		Where("employee_id = ? AND status = ? AND start_date >= ? AND start_date < ?", employeeID, "approved", from, to).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}
