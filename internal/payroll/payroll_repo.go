package payroll

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go-hrms/internal/shared/connection"
	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListFilter selects payrolls inside Visibility that belong to one of
// OrganizationIDs or to the employee linked to UserID.
type ListFilter struct {
	Visibility      tenant.Visibility
	AllInScope      bool
	OrganizationIDs []uuid.UUID
	UserID          *uuid.UUID
	EmployeeID      *uuid.UUID
	Month           int
	Year            int
	Status          Status
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	InsertIfAbsent(ctx context.Context, p *Payroll) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Payroll, error)
	List(ctx context.Context, f ListFilter) ([]Payroll, error)
	Transition(ctx context.Context, id uuid.UUID, from, to Status, paymentDate *time.Time) (bool, error)
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

// InsertIfAbsent reports false when the employee already has a payroll for
// the same month and year.
func (r *repository) InsertIfAbsent(ctx context.Context, p *Payroll) (bool, error) {
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "month"}, {Name: "year"}},
			DoNothing: true,
		}).
		Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Payroll, error) {
	var p Payroll
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Payroll, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.AllInScope {
		conds = append(conds, "1 = 1")
	}
	if len(f.OrganizationIDs) > 0 {
		conds = append(conds, "payrolls.organization_id IN ?")
		args = append(args, f.OrganizationIDs)
	}
	if f.UserID != nil {
		conds = append(conds, "employees.user_id = ?")
		args = append(args, *f.UserID)
	}
	if len(conds) == 0 {
		return []Payroll{}, nil
	}

	q := r.db.WithContext(ctx).
		Select("payrolls.*").
		Joins("JOIN employees ON employees.id = payrolls.employee_id").
		Scopes(tenant.ScopeColumn("payrolls.organization_id", f.Visibility)).
		Where("("+strings.Join(conds, " OR ")+")", args...)

	if f.EmployeeID != nil {
		q = q.Where("payrolls.employee_id = ?", *f.EmployeeID)
	}
	if f.Month > 0 {
		q = q.Where("payrolls.month = ?", f.Month)
	}
	if f.Year > 0 {
		q = q.Where("payrolls.year = ?", f.Year)
	}
	if f.Status != "" {
		q = q.Where("payrolls.status = ?", f.Status)
	}

	var rows []Payroll
	err := q.Preload("Employee").
		Order("payrolls.year DESC, payrolls.month DESC, employees.last_name ASC").
		Find(&rows).Error
	return rows, err
}

// Transition moves the payroll from one status to the next only while it is
// still in from.
func (r *repository) Transition(ctx context.Context, id uuid.UUID, from, to Status, paymentDate *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if paymentDate != nil {
		updates["payment_date"] = *paymentDate
	}
	res := r.db.WithContext(ctx).
		Model(&Payroll{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
