package leave

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

// ListFilter selects leave requests inside Visibility. A request is returned
// when it matches at least one of AllInScope, OrganizationIDs, RequesterUserID
// or ManagerIDs; a filter with none of them set matches nothing.
type ListFilter struct {
	Visibility      tenant.Visibility
	AllInScope      bool
	OrganizationIDs []uuid.UUID
	RequesterUserID *uuid.UUID
	ManagerIDs      []uuid.UUID
	ExcludeUserID   *uuid.UUID
	Status          Status
	EmployeeID      *uuid.UUID
	LeaveTypeID     *uuid.UUID
}

// StatusChange is applied by Transition together with the new status.
type StatusChange struct {
	To              Status
	ApprovedBy      *uuid.UUID
	ApprovedAt      *time.Time
	RejectionReason *string
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error)
	List(ctx context.Context, f ListFilter) ([]LeaveRequest, error)
	Transition(ctx context.Context, id uuid.UUID, from Status, change StatusChange) (bool, error)
	HasOverlap(ctx context.Context, employeeID uuid.UUID, start, end time.Time) (bool, error)
	DaysTaken(ctx context.Context, employeeID, leaveTypeID uuid.UUID, from, to time.Time) (int64, error)
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

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Preload("LeaveType").
		Where("id = ?", id).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]LeaveRequest, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.AllInScope {
		conds = append(conds, "1 = 1")
	}
	if len(f.OrganizationIDs) > 0 {
		conds = append(conds, "leave_requests.organization_id IN ?")
		args = append(args, f.OrganizationIDs)
	}
	if f.RequesterUserID != nil {
		conds = append(conds, "employees.user_id = ?")
		args = append(args, *f.RequesterUserID)
	}
	if len(f.ManagerIDs) > 0 {
		conds = append(conds, "employees.manager_id IN ?")
		args = append(args, f.ManagerIDs)
	}
	if len(conds) == 0 {
		return []LeaveRequest{}, nil
	}

	q := r.db.WithContext(ctx).
		Select("leave_requests.*").
		Joins("JOIN employees ON employees.id = leave_requests.employee_id").
		Scopes(tenant.ScopeColumn("leave_requests.organization_id", f.Visibility)).
		Where("("+strings.Join(conds, " OR ")+")", args...)

	if f.ExcludeUserID != nil {
		q = q.Where("(employees.user_id IS NULL OR employees.user_id <> ?)", *f.ExcludeUserID)
	}
	if f.Status != "" {
		q = q.Where("leave_requests.status = ?", f.Status)
	}
	if f.EmployeeID != nil {
		q = q.Where("leave_requests.employee_id = ?", *f.EmployeeID)
	}
	if f.LeaveTypeID != nil {
		q = q.Where("leave_requests.leave_type_id = ?", *f.LeaveTypeID)
	}

	var leaves []LeaveRequest
	err := q.Preload("Employee").
		Preload("LeaveType").
		Order("leave_requests.created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

// Transition moves the request to change.To only while it is still in from.
// It reports false when another writer changed the status first.
func (r *repository) Transition(ctx context.Context, id uuid.UUID, from Status, change StatusChange) (bool, error) {
	updates := map[string]interface{}{
		"status":     change.To,
		"updated_at": time.Now().UTC(),
	}
	if change.ApprovedBy != nil {
		updates["approved_by"] = *change.ApprovedBy
	}
	if change.ApprovedAt != nil {
		updates["approved_at"] = *change.ApprovedAt
	}
	if change.RejectionReason != nil {
		updates["rejection_reason"] = *change.RejectionReason
	}

	res := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// HasOverlap reports whether the employee already has a live request whose
// range intersects [start, end].
func (r *repository) HasOverlap(ctx context.Context, employeeID uuid.UUID, start, end time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []Status{StatusPending, StatusApproved}).
		Where("NOT (end_date < ? OR start_date > ?)", start, end).
		Count(&n).Error
	return n > 0, err
}

// DaysTaken sums pending and approved days of one leave type starting in
// [from, to).
func (r *repository) DaysTaken(ctx context.Context, employeeID, leaveTypeID uuid.UUID, from, to time.Time) (int64, error) {
	var total sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Select("SUM(total_days)").
		Where("employee_id = ? AND leave_type_id = ?", employeeID, leaveTypeID).
		Where("status IN ?", []Status{StatusPending, StatusApproved}).
		Where("start_date >= ? AND start_date < ?", from, to).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}
