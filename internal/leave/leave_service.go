package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-hrms/internal/authz"
	authzerrors "go-hrms/internal/authz/errors"
	"go-hrms/internal/employee"
	"go-hrms/internal/events"
	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/leavetype"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/dberr"
	"go-hrms/internal/shared/metrics"
	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type Service interface {
	Create(ctx context.Context, p contextutil.Principal, req CreateLeaveRequest) (LeaveResponse, error)
	List(ctx context.Context, p contextutil.Principal, organizationID string, req ListLeavesRequest) ([]LeaveResponse, error)
	GetByID(ctx context.Context, p contextutil.Principal, id string) (LeaveResponse, error)
	Approve(ctx context.Context, p contextutil.Principal, id string) (LeaveResponse, error)
	Reject(ctx context.Context, p contextutil.Principal, id string, reason string) (LeaveResponse, error)
	Cancel(ctx context.Context, p contextutil.Principal, id string) (LeaveResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	employees  employee.Repository
	leaveTypes leavetype.Repository
	outbox     events.Outbox
	authorizer authz.Authorizer
	metrics    *metrics.Metrics
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employees employee.Repository,
	leaveTypes leavetype.Repository,
	outbox events.Outbox,
	authorizer authz.Authorizer,
	m *metrics.Metrics,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		employees:  employees,
		leaveTypes: leaveTypes,
		outbox:     outbox,
		authorizer: authorizer,
		metrics:    m,
		now:        time.Now,
		logger:     l,
	}
}

// WithClock overrides the clock used for approval stamps and cancellation.
func WithClock(s Service, now func() time.Time) Service {
	if svc, ok := s.(*service); ok {
		svc.now = now
	}
	return s
}

func (s *service) Create(ctx context.Context, p contextutil.Principal, req CreateLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create leave requested",
		zap.String("user_id", p.UserID.String()),
		zap.String("leave_type_id", req.LeaveTypeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	if endDate.Before(startDate) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}

	lt, err := s.resolveLeaveType(ctx, p, req.LeaveTypeID)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	etx := s.employees.WithTx(tx)

	requester, err := etx.GetByUser(ctx, lt.OrganizationID, p.UserID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return LeaveResponse{}, leaveerrors.ErrNoEmployeeProfile
		}
		return LeaveResponse{}, err
	}

	overlap, err := qtx.HasOverlap(ctx, requester.ID, startDate, endDate)
	if err != nil {
		log.Error("create leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		log.Warn("create leave overlap detected",
			zap.String("employee_id", requester.ID.String()),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	totalDays := TotalDays(startDate, endDate)
	if lt.MaxDaysPerYear != nil {
		yearStart := time.Date(startDate.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		taken, err := qtx.DaysTaken(ctx, requester.ID, lt.ID, yearStart, yearStart.AddDate(1, 0, 0))
		if err != nil {
			return LeaveResponse{}, err
		}
		if taken+int64(totalDays) > int64(*lt.MaxDaysPerYear) {
			return LeaveResponse{}, leaveerrors.ErrQuotaExceeded.WithDetails(map[string]any{
				"max_days_per_year": *lt.MaxDaysPerYear,
				"days_taken":        taken,
				"days_requested":    totalDays,
			})
		}
	}

	l := &LeaveRequest{
		ID:             uuid.New(),
		OrganizationID: lt.OrganizationID,
		EmployeeID:     requester.ID,
		LeaveTypeID:    lt.ID,
		StartDate:      startDate,
		EndDate:        endDate,
		TotalDays:      totalDays,
		Reason:         strings.TrimSpace(req.Reason),
		Status:         StatusPending,
	}

	if err := qtx.Create(ctx, l); err != nil {
		log.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	l.Employee = &EmployeeRef{
		ID:             requester.ID,
		OrganizationID: requester.OrganizationID,
		UserID:         requester.UserID,
		ManagerID:      requester.ManagerID,
		FirstName:      requester.FirstName,
		LastName:       requester.LastName,
	}
	l.LeaveType = &LeaveTypeRef{ID: lt.ID, Name: lt.Name, Code: lt.Code, Color: lt.Color}

	manager, err := s.managerPrincipal(ctx, etx, requester.ManagerID)
	if err != nil {
		return LeaveResponse{}, err
	}
	evt := s.event(ctx, events.LeaveRequested, l, p).
		Notify(manager, events.KindLeave,
			"New leave request",
			fmt.Sprintf("%s requested %d day(s) of %s from %s to %s.",
				requester.FullName(), totalDays, lt.Name, req.StartDate, req.EndDate),
			leaveLink(l.ID))
	if err := s.outbox.Enqueue(ctx, tx, evt); err != nil {
		log.Error("create leave outbox persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	s.metrics.LeaveTransition(string(l.Status))

	log.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("organization_id", l.OrganizationID.String()),
		zap.String("employee_id", requester.ID.String()),
		zap.String("status", string(l.Status)),
	)
	return mapToResponse(*l), nil
}

// List applies the role view per organization: admins and owners see the
// whole organization, managers their own and their reports' requests, and
// employees their own. to_approve keeps only pending requests of others.
func (s *service) List(ctx context.Context, p contextutil.Principal, organizationID string, req ListLeavesRequest) ([]LeaveResponse, error) {
	v, err := authz.ResolveScope(ctx, s.authorizer, p, organizationID)
	if err != nil {
		return nil, err
	}

	f := ListFilter{Visibility: v, Status: Status(req.Status)}
	if req.Employee != "" {
		id, err := uuid.Parse(req.Employee)
		if err != nil {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		f.EmployeeID = &id
	}
	if req.LeaveType != "" {
		id, err := uuid.Parse(req.LeaveType)
		if err != nil {
			return nil, leaveerrors.ErrInvalidLeaveType
		}
		f.LeaveTypeID = &id
	}

	own := p.UserID
	switch req.Role {
	case RoleMyRequests:
		f.RequesterUserID = &own
	case RoleToApprove:
		f.Status = StatusPending
		f.ExcludeUserID = &own
		if err := s.approverScope(ctx, p, v, &f); err != nil {
			return nil, err
		}
	default:
		f.RequesterUserID = &own
		if err := s.approverScope(ctx, p, v, &f); err != nil {
			return nil, err
		}
	}

	leaves, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) approverScope(ctx context.Context, p contextutil.Principal, v tenant.Visibility, f *ListFilter) error {
	if v.All {
		f.AllInScope = true
		return nil
	}
	for _, orgID := range v.OrganizationIDs() {
		role := v.Roles[orgID]
		switch {
		case s.authorizer.Allows(role, authz.CapabilityAdmin):
			f.OrganizationIDs = append(f.OrganizationIDs, orgID)
		case s.authorizer.Allows(role, authz.CapabilityManagerOrAdmin):
			mgr, err := s.employees.GetByUser(ctx, orgID, p.UserID)
			if err != nil {
				if dberr.IsNotFound(err) {
					continue
				}
				return err
			}
			f.ManagerIDs = append(f.ManagerIDs, mgr.ID)
		}
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, p contextutil.Principal, id string) (LeaveResponse, error) {
	l, role, err := s.load(ctx, s.repo, p, id, authz.CapabilityMember)
	if err != nil {
		return LeaveResponse{}, err
	}

	switch {
	case s.authorizer.Allows(role, authz.CapabilityAdmin):
	case s.isRequester(p, l):
	case s.authorizer.Allows(role, authz.CapabilityManagerOrAdmin):
		if err := s.checkManager(ctx, s.employees, p, l); err != nil {
			if errors.Is(err, leaveerrors.ErrNotSubordinate) {
				return LeaveResponse{}, authzerrors.ErrNotVisible
			}
			return LeaveResponse{}, err
		}
	default:
		return LeaveResponse{}, authzerrors.ErrNotVisible
	}
	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, p contextutil.Principal, id string) (LeaveResponse, error) {
	return s.decide(ctx, p, id, StatusApproved, "")
}

func (s *service) Reject(ctx context.Context, p contextutil.Principal, id string, reason string) (LeaveResponse, error) {
	return s.decide(ctx, p, id, StatusRejected, strings.TrimSpace(reason))
}

// decide approves or rejects a pending request. The status write is a
// compare-and-swap on pending so concurrent deciders cannot both win.
func (s *service) decide(ctx context.Context, p contextutil.Principal, id string, to Status, reason string) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("leave decision requested",
		zap.String("leave_id", id),
		zap.String("user_id", p.UserID.String()),
		zap.String("target_status", string(to)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("leave decision begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	etx := s.employees.WithTx(tx)

	l, role, err := s.load(ctx, qtx, p, id, authz.CapabilityManagerOrAdmin)
	if err != nil {
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
	}

	if s.authorizer.Allows(role, authz.CapabilityAdmin) {
		if s.isRequester(p, l) {
			return LeaveResponse{}, leaveerrors.ErrSelfApproval
		}
	} else if err := s.checkManager(ctx, etx, p, l); err != nil {
		return LeaveResponse{}, err
	}

	change := StatusChange{To: to}
	if to == StatusApproved {
		now := s.now().UTC()
		change.ApprovedBy = &p.UserID
		change.ApprovedAt = &now
	} else {
		change.RejectionReason = &reason
	}

	ok, err := qtx.Transition(ctx, l.ID, StatusPending, change)
	if err != nil {
		log.Error("leave decision persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if !ok {
		log.Warn("leave decision lost race", zap.String("leave_id", id))
		return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
	}
	applyChange(l, change)

	var evt events.DomainEvent
	if to == StatusApproved {
		evt = s.event(ctx, events.LeaveApproved, l, p).
			Notify(requesterPrincipal(l), events.KindLeave,
				"Leave request approved",
				fmt.Sprintf("Your leave from %s to %s was approved.", formatDate(l.StartDate), formatDate(l.EndDate)),
				leaveLink(l.ID))
	} else {
		msg := fmt.Sprintf("Your leave from %s to %s was rejected.", formatDate(l.StartDate), formatDate(l.EndDate))
		if reason != "" {
			msg += " Reason: " + reason
		}
		evt = s.event(ctx, events.LeaveRejected, l, p).
			Notify(requesterPrincipal(l), events.KindLeave, "Leave request rejected", msg, leaveLink(l.ID))
	}
	if err := s.outbox.Enqueue(ctx, tx, evt); err != nil {
		log.Error("leave decision outbox persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("leave decision commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	s.metrics.LeaveTransition(string(to))

	log.Info("leave decision success",
		zap.String("leave_id", id),
		zap.String("status", string(to)),
	)
	return mapToResponse(*l), nil
}

// Cancel withdraws the caller's own request while it is pending, or while it
// is approved and has not started yet.
func (s *service) Cancel(ctx context.Context, p contextutil.Principal, id string) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	etx := s.employees.WithTx(tx)

	l, _, err := s.load(ctx, qtx, p, id, authz.CapabilityMember)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !s.isRequester(p, l) {
		return LeaveResponse{}, leaveerrors.ErrNotRequester
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case l.Status == StatusPending:
	case l.Status == StatusApproved && l.StartDate.After(today):
	default:
		return LeaveResponse{}, leaveerrors.ErrCannotCancel
	}

	from := l.Status
	change := StatusChange{To: StatusCancelled}
	ok, err := qtx.Transition(ctx, l.ID, from, change)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !ok {
		return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
	}
	applyChange(l, change)

	recipient := l.ApprovedBy
	if recipient == nil && l.Employee != nil {
		if recipient, err = s.managerPrincipal(ctx, etx, l.Employee.ManagerID); err != nil {
			return LeaveResponse{}, err
		}
	}
	evt := s.event(ctx, events.LeaveCancelled, l, p).
		Notify(recipient, events.KindLeave,
			"Leave request cancelled",
			fmt.Sprintf("%s cancelled their leave from %s to %s.",
				employeeName(l), formatDate(l.StartDate), formatDate(l.EndDate)),
			leaveLink(l.ID))
	if err := s.outbox.Enqueue(ctx, tx, evt); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}
	s.metrics.LeaveTransition(string(StatusCancelled))

	log.Info("leave cancelled",
		zap.String("leave_id", id),
		zap.String("previous_status", string(from)),
	)
	return mapToResponse(*l), nil
}

func (s *service) resolveLeaveType(ctx context.Context, p contextutil.Principal, raw string) (*leavetype.LeaveType, error) {
	ltID, err := uuid.Parse(raw)
	if err != nil {
		return nil, leaveerrors.ErrInvalidLeaveType
	}
	lt, err := s.leaveTypes.GetByID(ctx, ltID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, leaveerrors.ErrInvalidLeaveType
		}
		return nil, err
	}
	if _, err := s.authorizer.AuthorizeObject(ctx, p, lt.OrganizationID, authz.CapabilityMember); err != nil {
		if errors.Is(err, authzerrors.ErrNotVisible) {
			return nil, leaveerrors.ErrInvalidLeaveType
		}
		return nil, err
	}
	if !lt.IsActive {
		return nil, leaveerrors.ErrInvalidLeaveType
	}
	return lt, nil
}

func (s *service) load(ctx context.Context, repo Repository, p contextutil.Principal, id string, cap authz.Capability) (*LeaveRequest, tenant.Role, error) {
	leaveID, err := uuid.Parse(id)
	if err != nil {
		return nil, "", leaveerrors.ErrLeaveNotFound
	}
	l, err := repo.GetByID(ctx, leaveID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, "", leaveerrors.ErrLeaveNotFound
		}
		return nil, "", err
	}
	role, err := s.authorizer.AuthorizeObject(ctx, p, l.OrganizationID, cap)
	if err != nil {
		return nil, "", err
	}
	return l, role, nil
}

func (s *service) isRequester(p contextutil.Principal, l *LeaveRequest) bool {
	return l.Employee != nil && l.Employee.UserID != nil && *l.Employee.UserID == p.UserID
}

// checkManager requires p to be the direct manager of the requester.
func (s *service) checkManager(ctx context.Context, employees employee.Repository, p contextutil.Principal, l *LeaveRequest) error {
	actor, err := employees.GetByUser(ctx, l.OrganizationID, p.UserID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return leaveerrors.ErrNotSubordinate
		}
		return err
	}
	if l.Employee == nil || l.Employee.ManagerID == nil || *l.Employee.ManagerID != actor.ID {
		return leaveerrors.ErrNotSubordinate
	}
	return nil
}

// managerPrincipal returns the principal linked to the manager employee, if any.
func (s *service) managerPrincipal(ctx context.Context, employees employee.Repository, managerID *uuid.UUID) (*uuid.UUID, error) {
	if managerID == nil {
		return nil, nil
	}
	mgr, err := employees.GetByID(ctx, *managerID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return mgr.UserID, nil
}

func (s *service) event(ctx context.Context, typ events.Type, l *LeaveRequest, p contextutil.Principal) events.DomainEvent {
	evt := events.New(typ, l.OrganizationID, "leave_request", l.ID, s.now()).From(p.UserID)
	evt.RequestID = contextutil.GetRequestID(ctx)
	return evt
}

func applyChange(l *LeaveRequest, change StatusChange) {
	l.Status = change.To
	if change.ApprovedBy != nil {
		l.ApprovedBy = change.ApprovedBy
	}
	if change.ApprovedAt != nil {
		l.ApprovedAt = change.ApprovedAt
	}
	if change.RejectionReason != nil {
		l.RejectionReason = *change.RejectionReason
	}
}

func requesterPrincipal(l *LeaveRequest) *uuid.UUID {
	if l.Employee == nil {
		return nil
	}
	return l.Employee.UserID
}

func employeeName(l *LeaveRequest) string {
	if l.Employee == nil {
		return ""
	}
	return l.Employee.FullName()
}

func leaveLink(id uuid.UUID) string {
	return "/leaves/" + id.String()
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:              l.ID.String(),
		OrganizationID:  l.OrganizationID.String(),
		EmployeeID:      l.EmployeeID.String(),
		EmployeeName:    employeeName(&l),
		LeaveTypeID:     l.LeaveTypeID.String(),
		StartDate:       formatDate(l.StartDate),
		EndDate:         formatDate(l.EndDate),
		TotalDays:       l.TotalDays,
		Reason:          l.Reason,
		Status:          string(l.Status),
		RejectionReason: l.RejectionReason,
		CreatedAt:       l.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       l.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if l.LeaveType != nil {
		resp.LeaveTypeName = l.LeaveType.Name
		resp.LeaveTypeColor = l.LeaveType.Color
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.UTC().Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
