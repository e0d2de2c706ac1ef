package payroll

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go-hrms/internal/authz"
	authzerrors "go-hrms/internal/authz/errors"
	"go-hrms/internal/employee"
	"go-hrms/internal/events"
	payrollerrors "go-hrms/internal/payroll/errors"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/dberr"
	"go-hrms/internal/shared/metrics"
	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type Service interface {
	Generate(ctx context.Context, p contextutil.Principal, organizationID string, req GeneratePayrollRequest) (GeneratePayrollResponse, error)
	List(ctx context.Context, p contextutil.Principal, organizationID string, req ListPayrollsRequest) ([]PayrollResponse, error)
	MyPayrolls(ctx context.Context, p contextutil.Principal, organizationID string) ([]PayrollResponse, error)
	GetByID(ctx context.Context, p contextutil.Principal, id string) (PayrollResponse, error)
	Process(ctx context.Context, p contextutil.Principal, id string) (PayrollResponse, error)
	MarkPaid(ctx context.Context, p contextutil.Principal, id string) (PayrollResponse, error)
	Payslip(ctx context.Context, p contextutil.Principal, id string) ([]byte, string, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	employees  employee.Repository
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
	outbox events.Outbox,
	authorizer authz.Authorizer,
	m *metrics.Metrics,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		employees:  employees,
		outbox:     outbox,
		authorizer: authorizer,
		metrics:    m,
		now:        time.Now,
		logger:     l,
	}
}

// WithClock overrides the clock used for payment dates and event stamps.
func WithClock(s Service, now func() time.Time) Service {
	if svc, ok := s.(*service); ok {
		svc.now = now
	}
	return s
}

// Generate creates a draft payroll for every active employee of the
// organization that has none for the period. Re-running it for the same
// period creates nothing and reports every employee as skipped.
func (s *service) Generate(ctx context.Context, p contextutil.Principal, organizationID string, req GeneratePayrollRequest) (GeneratePayrollResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if organizationID == "" {
		organizationID = req.OrganizationID
	}
	orgID, err := authz.ParseOrganization(organizationID)
	if err != nil {
		return GeneratePayrollResponse{}, err
	}
	if req.Month < 1 || req.Month > 12 || req.Year < 2000 || req.Year > 2100 {
		return GeneratePayrollResponse{}, payrollerrors.ErrInvalidPeriod
	}
	role, err := s.authorizer.Authorize(ctx, p, orgID, authz.CapabilityAdmin)
	if err != nil {
		return GeneratePayrollResponse{}, err
	}

	log.Debug("payroll generation requested",
		zap.String("organization_id", orgID.String()),
		zap.Int("month", req.Month),
		zap.Int("year", req.Year),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("payroll generation begin tx failed", zap.Error(err))
		return GeneratePayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	active := true
	scope := tenant.Visibility{Roles: map[uuid.UUID]tenant.Role{orgID: role}}
	empls, err := s.employees.WithTx(tx).List(ctx, scope, employee.ListFilter{IsActive: &active})
	if err != nil {
		return GeneratePayrollResponse{}, err
	}

	now := s.now()
	var (
		resp GeneratePayrollResponse
		evts []events.DomainEvent
	)
	for i := range empls {
		e := &empls[i]
		base := e.MonthlySalary()
		bonuses, deductions, net := Compute(base)
		pr := &Payroll{
			ID:             uuid.New(),
			OrganizationID: orgID,
			EmployeeID:     e.ID,
			Month:          req.Month,
			Year:           req.Year,
			BaseSalary:     base,
			Bonuses:        bonuses,
			Deductions:     deductions,
			NetSalary:      net,
			Status:         StatusDraft,
		}
		created, err := qtx.InsertIfAbsent(ctx, pr)
		if err != nil {
			log.Error("payroll insert failed", zap.String("employee_id", e.ID.String()), zap.Error(err))
			return GeneratePayrollResponse{}, err
		}
		if !created {
			resp.Skipped++
			continue
		}
		resp.Created++

		if e.UserID != nil {
			evt := events.New(events.PayrollGenerated, orgID, "payroll", pr.ID, now).
				From(p.UserID).
				Notify(e.UserID, events.KindPayroll,
					"Payslip available",
					fmt.Sprintf("Your payslip for %s is available.", pr.Period()),
					payrollLink(pr.ID))
			evt.RequestID = contextutil.GetRequestID(ctx)
			evts = append(evts, evt)
		}
	}

	if len(evts) > 0 {
		if err := s.outbox.Enqueue(ctx, tx, evts...); err != nil {
			log.Error("payroll outbox persist failed", zap.Error(err))
			return GeneratePayrollResponse{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		log.Error("payroll generation commit failed", zap.Error(err))
		return GeneratePayrollResponse{}, err
	}
	s.metrics.PayrollGenerated(resp.Created, resp.Skipped)

	resp.Message = fmt.Sprintf("%d payroll(s) generated for %s, %d already existed",
		resp.Created, periodLabel(req.Month, req.Year), resp.Skipped)
	log.Info("payroll generation success",
		zap.String("organization_id", orgID.String()),
		zap.Int("created", resp.Created),
		zap.Int("skipped", resp.Skipped),
	)
	return resp, nil
}

// List is reserved to admins and owners of the organizations in scope.
func (s *service) List(ctx context.Context, p contextutil.Principal, organizationID string, req ListPayrollsRequest) ([]PayrollResponse, error) {
	v, err := authz.ResolveScope(ctx, s.authorizer, p, organizationID)
	if err != nil {
		return nil, err
	}
	ids, all := authz.OrganizationsWith(s.authorizer, v, authz.CapabilityAdmin)
	if !all && len(ids) == 0 {
		return nil, authzerrors.ErrForbidden
	}

	f := ListFilter{
		Visibility:      v,
		AllInScope:      all,
		OrganizationIDs: ids,
		Month:           req.Month,
		Year:            req.Year,
		Status:          Status(req.Status),
	}
	if req.Employee != "" {
		id, err := uuid.Parse(req.Employee)
		if err != nil {
			return nil, payrollerrors.ErrInvalidEmployeeID
		}
		f.EmployeeID = &id
	}

	rows, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) MyPayrolls(ctx context.Context, p contextutil.Principal, organizationID string) ([]PayrollResponse, error) {
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

func (s *service) GetByID(ctx context.Context, p contextutil.Principal, id string) (PayrollResponse, error) {
	pr, err := s.visible(ctx, p, id)
	if err != nil {
		return PayrollResponse{}, err
	}
	return mapToResponse(*pr), nil
}

func (s *service) Process(ctx context.Context, p contextutil.Principal, id string) (PayrollResponse, error) {
	return s.transition(ctx, p, id, StatusDraft, StatusProcessed)
}

func (s *service) MarkPaid(ctx context.Context, p contextutil.Principal, id string) (PayrollResponse, error) {
	return s.transition(ctx, p, id, StatusProcessed, StatusPaid)
}

func (s *service) transition(ctx context.Context, p contextutil.Principal, id string, from, to Status) (PayrollResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	pr, err := s.load(ctx, id)
	if err != nil {
		return PayrollResponse{}, err
	}
	if _, err := s.authorizer.AuthorizeObject(ctx, p, pr.OrganizationID, authz.CapabilityAdmin); err != nil {
		return PayrollResponse{}, err
	}
	if pr.Status != from {
		return PayrollResponse{}, payrollerrors.ErrInvalidStatusTransition
	}

	var paymentDate *time.Time
	if to == StatusPaid {
		now := s.now().UTC()
		d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		paymentDate = &d
	}
	ok, err := s.repo.Transition(ctx, pr.ID, from, to, paymentDate)
	if err != nil {
		log.Error("payroll transition failed", zap.String("payroll_id", id), zap.Error(err))
		return PayrollResponse{}, err
	}
	if !ok {
		return PayrollResponse{}, payrollerrors.ErrInvalidStatusTransition
	}

	pr.Status = to
	if paymentDate != nil {
		pr.PaymentDate = paymentDate
	}
	log.Info("payroll status changed",
		zap.String("payroll_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return mapToResponse(*pr), nil
}

func (s *service) Payslip(ctx context.Context, p contextutil.Principal, id string) ([]byte, string, error) {
	pr, err := s.visible(ctx, p, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := buildPayslipPDF(payslipLines(pr))
	if err != nil {
		return nil, "", err
	}
	name := fmt.Sprintf("payslip-%04d-%02d", pr.Year, pr.Month)
	if pr.Employee != nil && pr.Employee.Code != "" {
		name += "-" + pr.Employee.Code
	}
	return pdf, name + ".pdf", nil
}

// visible loads a payroll readable by p: admins of its organization and the
// employee it was issued to.
func (s *service) visible(ctx context.Context, p contextutil.Principal, id string) (*Payroll, error) {
	pr, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	role, err := s.authorizer.AuthorizeObject(ctx, p, pr.OrganizationID, authz.CapabilityMember)
	if err != nil {
		return nil, err
	}
	if s.authorizer.Allows(role, authz.CapabilityAdmin) {
		return pr, nil
	}
	if pr.Employee != nil && pr.Employee.UserID != nil && *pr.Employee.UserID == p.UserID {
		return pr, nil
	}
	return nil, authzerrors.ErrNotVisible
}

func (s *service) load(ctx context.Context, id string) (*Payroll, error) {
	payrollID, err := uuid.Parse(id)
	if err != nil {
		return nil, payrollerrors.ErrPayrollNotFound
	}
	pr, err := s.repo.GetByID(ctx, payrollID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, payrollerrors.ErrPayrollNotFound
		}
		return nil, err
	}
	return pr, nil
}

func payrollLink(id uuid.UUID) string {
	return "/payrolls/" + id.String()
}

func periodLabel(month, year int) string {
	return fmt.Sprintf("%02d/%04d", month, year)
}

func mapToResponse(pr Payroll) PayrollResponse {
	resp := PayrollResponse{
		ID:             pr.ID.String(),
		OrganizationID: pr.OrganizationID.String(),
		EmployeeID:     pr.EmployeeID.String(),
		Month:          pr.Month,
		Year:           pr.Year,
		BaseSalary:     pr.BaseSalary.StringFixed(2),
		Bonuses:        pr.Bonuses.StringFixed(2),
		Deductions:     pr.Deductions.StringFixed(2),
		NetSalary:      pr.NetSalary.StringFixed(2),
		Status:         string(pr.Status),
		Notes:          pr.Notes,
		CreatedAt:      pr.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      pr.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if pr.Employee != nil {
		resp.EmployeeDetail = &EmployeeDetail{
			ID:         pr.Employee.ID.String(),
			FullName:   pr.Employee.FullName(),
			EmployeeID: pr.Employee.Code,
		}
	}
	if pr.PaymentDate != nil {
		v := pr.PaymentDate.Format(dateLayout)
		resp.PaymentDate = &v
	}
	return resp
}

func mapToListResponse(rows []Payroll) []PayrollResponse {
	resp := make([]PayrollResponse, len(rows))
	for i, pr := range rows {
		resp[i] = mapToResponse(pr)
	}
	return resp
}
