package attendance

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go-hrms/internal/shared/connection"
	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListFilter selects records inside Visibility. A record is returned when it
// belongs to one of OrganizationIDs or to the employee linked to UserID; a
// filter with neither set matches nothing unless AllInScope is true.
type ListFilter struct {
	Visibility      tenant.Visibility
	AllInScope      bool
	OrganizationIDs []uuid.UUID
	UserID          *uuid.UUID
	EmployeeID      *uuid.UUID
	Date            *time.Time
	Status          Status
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreateIfAbsent(ctx context.Context, a *Attendance) (bool, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date time.Time) (*Attendance, error)
	CheckIn(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	CheckOut(ctx context.Context, id uuid.UUID, at time.Time, hours decimal.Decimal) (bool, error)
	List(ctx context.Context, f ListFilter) ([]Attendance, error)
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

// CreateIfAbsent inserts a unless a record for the same employee and date
// exists. It reports whether a was inserted.
func (r *repository) CreateIfAbsent(ctx context.Context, a *Attendance) (bool, error) {
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "date"}},
			DoNothing: true,
		}).
		Create(a)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) GetByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date time.Time) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("employee_id = ? AND date = ?", employeeID, date).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CheckIn stamps a record that has no check-in yet, such as one marked
// absent, and flips it to present.
func (r *repository) CheckIn(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Where("id = ? AND check_in IS NULL", id).
		Updates(map[string]interface{}{
			"check_in":   at,
			"status":     StatusPresent,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CheckOut stamps the check-out only once.
func (r *repository) CheckOut(ctx context.Context, id uuid.UUID, at time.Time, hours decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Where("id = ? AND check_in IS NOT NULL AND check_out IS NULL", id).
		Updates(map[string]interface{}{
			"check_out":    at,
			"hours_worked": hours,
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Attendance, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.AllInScope {
		conds = append(conds, "1 = 1")
	}
	if len(f.OrganizationIDs) > 0 {
		conds = append(conds, "attendances.organization_id IN ?")
		args = append(args, f.OrganizationIDs)
	}
	if f.UserID != nil {
		conds = append(conds, "employees.user_id = ?")
		args = append(args, *f.UserID)
	}
	if len(conds) == 0 {
		return []Attendance{}, nil
	}

	q := r.db.WithContext(ctx).
		Select("attendances.*").
		Joins("JOIN employees ON employees.id = attendances.employee_id").
		Scopes(tenant.ScopeColumn("attendances.organization_id", f.Visibility)).
		Where("("+strings.Join(conds, " OR ")+")", args...)

	if f.EmployeeID != nil {
		q = q.Where("attendances.employee_id = ?", *f.EmployeeID)
	}
	if f.Date != nil {
		q = q.Where("attendances.date = ?", *f.Date)
	}
	if f.Status != "" {
		q = q.Where("attendances.status = ?", f.Status)
	}

	var rows []Attendance
	err := q.Preload("Employee").
		Order("attendances.date DESC, attendances.check_in DESC").
		Find(&rows).Error
	return rows, err
}
