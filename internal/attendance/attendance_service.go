package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-hrms/internal/authz"
	authzerrors "go-hrms/internal/authz/errors"
	attendanceerrors "go-hrms/internal/attendance/errors"
	"go-hrms/internal/employee"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/dberr"
	"go-hrms/internal/shared/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type Service interface {
	CheckIn(ctx context.Context, p contextutil.Principal, organizationID string, req CheckRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, p contextutil.Principal, organizationID string, req CheckRequest) (AttendanceResponse, error)
	CurrentStatus(ctx context.Context, p contextutil.Principal, organizationID string) (CurrentStatusResponse, error)
	List(ctx context.Context, p contextutil.Principal, organizationID string, req ListAttendanceRequest) ([]AttendanceResponse, error)
	MyAttendance(ctx context.Context, p contextutil.Principal, organizationID string) ([]AttendanceResponse, error)
	MarkAbsent(ctx context.Context, p contextutil.Principal, req MarkAbsentRequest) (AttendanceResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	employees  employee.Repository
	authorizer authz.Authorizer
	metrics    *metrics.Metrics
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employees employee.Repository,
	authorizer authz.Authorizer,
	m *metrics.Metrics,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		employees:  employees,
		authorizer: authorizer,
		metrics:    m,
		now:        time.Now,
		logger:     l,
	}
}

// WithClock overrides the clock that decides "today" and the check times.
func WithClock(s Service, now func() time.Time) Service {
	if svc, ok := s.(*service); ok {
		svc.now = now
	}
	return s
}

func (s *service) CheckIn(ctx context.Context, p contextutil.Principal, organizationID string, req CheckRequest) (AttendanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	emp, err := s.profile(ctx, p, organizationID)
	if err != nil {
		return AttendanceResponse{}, err
	}
	now := s.now().UTC()
	today := dayOf(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("check in begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	a := &Attendance{
		ID:             uuid.New(),
		OrganizationID: emp.OrganizationID,
		EmployeeID:     emp.ID,
		Date:           today,
		CheckIn:        &now,
		Status:         StatusPresent,
		Notes:          req.Notes,
	}
	created, err := qtx.CreateIfAbsent(ctx, a)
	if err != nil {
		log.Error("check in persist failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	if !created {
		existing, err := qtx.GetByEmployeeAndDate(ctx, emp.ID, today)
		if err != nil {
			return AttendanceResponse{}, err
		}
		if existing.CheckIn != nil {
			return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedIn
		}
		ok, err := qtx.CheckIn(ctx, existing.ID, now)
		if err != nil {
			return AttendanceResponse{}, err
		}
		if !ok {
			return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedIn
		}
		existing.CheckIn = &now
		existing.Status = StatusPresent
		a = existing
	}

	if err := tx.Commit(); err != nil {
		log.Error("check in commit failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	s.metrics.AttendanceEvent("check_in")

	a.Employee = refOf(emp)
	log.Info("check in success",
		zap.String("attendance_id", a.ID.String()),
		zap.String("employee_id", emp.ID.String()),
		zap.String("date", today.Format(dateLayout)),
	)
	return mapToResponse(*a), nil
}

// CheckOut closes today's record. A clock that reads earlier than the stored
// check-in is rejected and the record stays open.
func (s *service) CheckOut(ctx context.Context, p contextutil.Principal, organizationID string, req CheckRequest) (AttendanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	emp, err := s.profile(ctx, p, organizationID)
	if err != nil {
		return AttendanceResponse{}, err
	}
	now := s.now().UTC()
	today := dayOf(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("check out begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	a, err := qtx.GetByEmployeeAndDate(ctx, emp.ID, today)
	if err != nil {
		if dberr.IsNotFound(err) {
			return AttendanceResponse{}, attendanceerrors.ErrNotCheckedIn
		}
		return AttendanceResponse{}, err
	}
	switch {
	case a.CheckIn == nil:
		return AttendanceResponse{}, attendanceerrors.ErrNotCheckedIn
	case a.CheckOut != nil:
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedOut
	case now.Before(*a.CheckIn):
		log.Warn("check out before check in",
			zap.String("attendance_id", a.ID.String()),
			zap.Time("check_in", *a.CheckIn),
			zap.Time("check_out", now),
		)
		return AttendanceResponse{}, attendanceerrors.ErrCheckOutBeforeCheckIn
	}

	hours := HoursBetween(*a.CheckIn, now)
	ok, err := qtx.CheckOut(ctx, a.ID, now, hours)
	if err != nil {
		log.Error("check out persist failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	if !ok {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedOut
	}

	if err := tx.Commit(); err != nil {
		log.Error("check out commit failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	s.metrics.AttendanceEvent("check_out")

	a.CheckOut = &now
	a.HoursWorked = hours
	if req.Notes != "" {
		a.Notes = req.Notes
	}
	log.Info("check out success",
		zap.String("attendance_id", a.ID.String()),
		zap.String("hours_worked", hours.StringFixed(2)),
	)
	return mapToResponse(*a), nil
}

func (s *service) CurrentStatus(ctx context.Context, p contextutil.Principal, organizationID string) (CurrentStatusResponse, error) {
	emp, err := s.profile(ctx, p, organizationID)
	if err != nil {
		return CurrentStatusResponse{}, err
	}
	today := dayOf(s.now().UTC())

	resp := CurrentStatusResponse{Date: today.Format(dateLayout), Status: "none"}
	a, err := s.repo.GetByEmployeeAndDate(ctx, emp.ID, today)
	if err != nil {
		if dberr.IsNotFound(err) {
			return resp, nil
		}
		return CurrentStatusResponse{}, err
	}

	out := mapToResponse(*a)
	resp.Status = string(a.Status)
	resp.IsClockedIn = a.IsClockedIn()
	resp.Attendance = &out
	return resp, nil
}

// List shows whole organizations where the caller is manager or above and
// only the caller's own records elsewhere.
func (s *service) List(ctx context.Context, p contextutil.Principal, organizationID string, req ListAttendanceRequest) ([]AttendanceResponse, error) {
	v, err := authz.ResolveScope(ctx, s.authorizer, p, organizationID)
	if err != nil {
		return nil, err
	}

	own := p.UserID
	f := ListFilter{Visibility: v, UserID: &own, Status: Status(req.Status)}
	if ids, all := authz.OrganizationsWith(s.authorizer, v, authz.CapabilityManagerOrAdmin); all {
		f.AllInScope = true
	} else {
		f.OrganizationIDs = ids
	}
	if req.Employee != "" {
		id, err := uuid.Parse(req.Employee)
		if err != nil {
			return nil, attendanceerrors.ErrEmployeeNotFound
		}
		f.EmployeeID = &id
	}
	if req.Date != "" {
		d, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return nil, attendanceerrors.ErrInvalidDate
		}
		f.Date = &d
	}

	rows, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) MyAttendance(ctx context.Context, p contextutil.Principal, organizationID string) ([]AttendanceResponse, error) {
	v, err := authz.ResolveScope(ctx, s.authorizer, p, organizationID)
	if err != nil {
		return nil, err
	}
	own := p.UserID
	rows, err := s.repo.List(ctx, ListFilter{Visibility: v, UserID: &own})
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) MarkAbsent(ctx context.Context, p contextutil.Principal, req MarkAbsentRequest) (AttendanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	empID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrEmployeeNotFound
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidDate
	}

	emp, err := s.employees.GetByID(ctx, empID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return AttendanceResponse{}, attendanceerrors.ErrEmployeeNotFound
		}
		return AttendanceResponse{}, err
	}
	if _, err := s.authorizer.AuthorizeObject(ctx, p, emp.OrganizationID, authz.CapabilityManagerOrAdmin); err != nil {
		if errors.Is(err, authzerrors.ErrNotVisible) {
			return AttendanceResponse{}, attendanceerrors.ErrEmployeeNotFound
		}
		return AttendanceResponse{}, err
	}

	a := &Attendance{
		ID:             uuid.New(),
		OrganizationID: emp.OrganizationID,
		EmployeeID:     emp.ID,
		Date:           date,
		Status:         StatusAbsent,
		Notes:          req.Notes,
	}
	created, err := s.repo.CreateIfAbsent(ctx, a)
	if err != nil {
		log.Error("mark absent persist failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	if !created {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyRecorded
	}
	s.metrics.AttendanceEvent("mark_absent")

	a.Employee = refOf(emp)
	log.Info("employee marked absent",
		zap.String("employee_id", emp.ID.String()),
		zap.String("date", req.Date),
		zap.String("marked_by", p.UserID.String()),
	)
	return mapToResponse(*a), nil
}

// profile finds the caller's active employee record within the organizations
// in scope. A principal has at most one profile.
func (s *service) profile(ctx context.Context, p contextutil.Principal, organizationID string) (*employee.Employee, error) {
	v, err := authz.ResolveScope(ctx, s.authorizer, p, organizationID)
	if err != nil {
		return nil, err
	}
	for _, orgID := range v.OrganizationIDs() {
		emp, err := s.employees.GetByUser(ctx, orgID, p.UserID)
		if err != nil {
			if dberr.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if !emp.IsActive {
			break
		}
		return emp, nil
	}
	return nil, attendanceerrors.ErrNoEmployeeProfile
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func refOf(e *employee.Employee) *EmployeeRef {
	return &EmployeeRef{
		ID:        e.ID,
		UserID:    e.UserID,
		Code:      e.EmployeeID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(time.RFC3339)
	return &v
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:             a.ID.String(),
		OrganizationID: a.OrganizationID.String(),
		EmployeeID:     a.EmployeeID.String(),
		Date:           a.Date.Format(dateLayout),
		CheckIn:        formatTime(a.CheckIn),
		CheckOut:       formatTime(a.CheckOut),
		Status:         string(a.Status),
		HoursWorked:    a.HoursWorked.StringFixed(2),
		Notes:          a.Notes,
		CreatedAt:      a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      a.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if a.Employee != nil {
		resp.EmployeeDetail = &EmployeeDetail{
			ID:         a.Employee.ID.String(),
			FullName:   a.Employee.FullName(),
			EmployeeID: a.Employee.Code,
		}
	}
	return resp
}

func mapToListResponse(rows []Attendance) []AttendanceResponse {
	resp := make([]AttendanceResponse, len(rows))
	for i, a := range rows {
		resp[i] = mapToResponse(a)
	}
	return resp
}
