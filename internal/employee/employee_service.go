package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go-hrms/internal/authz"
	employeeerrors "go-hrms/internal/employee/errors"
	"go-hrms/internal/events"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/counter"
	"go-hrms/internal/shared/dberr"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	EmployeeOptionsKeyPrefix = "employees:options:"
	employeeOptionsTTL       = time.Hour
	dateLayout               = "2006-01-02"
)

func GetEmployeeOptionsKey(organizationID string) string {
	return EmployeeOptionsKeyPrefix + organizationID
}

type Service interface {
	Create(ctx context.Context, p contextutil.Principal, req CreateEmployeeRequest) (EmployeeResponse, error)
	List(ctx context.Context, p contextutil.Principal, organizationID string, req ListEmployeesRequest) ([]EmployeeResponse, error)
	Options(ctx context.Context, p contextutil.Principal, organizationID string) ([]EmployeeOption, error)
	GetByID(ctx context.Context, p contextutil.Principal, id string) (EmployeeResponse, error)
	Update(ctx context.Context, p contextutil.Principal, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, p contextutil.Principal, id string) error
	Subordinates(ctx context.Context, p contextutil.Principal, id string) ([]EmployeeResponse, error)
	LeaveBalance(ctx context.Context, p contextutil.Principal, id string) (LeaveBalanceResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	counter    counter.Repository
	outbox     events.Outbox
	rdb        *redis.Client
	authorizer authz.Authorizer
	sf         *singleflight.Group
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counter counter.Repository,
	outbox events.Outbox,
	rdb *redis.Client,
	authorizer authz.Authorizer,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		counter:    counter,
		outbox:     outbox,
		rdb:        rdb,
		authorizer: authorizer,
		sf:         &singleflight.Group{},
		now:        time.Now,
		logger:     l,
	}
}

// WithClock overrides the clock used for leave balances and event stamps.
func WithClock(s Service, now func() time.Time) Service {
	if svc, ok := s.(*service); ok {
		svc.now = now
	}
	return s
}

func (s *service) Create(ctx context.Context, p contextutil.Principal, req CreateEmployeeRequest) (EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create employee requested",
		zap.String("organization_id", req.OrganizationID),
		zap.String("email", req.Email),
	)

	orgID, err := authz.ParseOrganization(req.OrganizationID)
	if err != nil {
		return EmployeeResponse{}, err
	}
	if _, err := s.authorizer.Authorize(ctx, p, orgID, authz.CapabilityAdmin); err != nil {
		return EmployeeResponse{}, err
	}

	hireDate, err := time.Parse(dateLayout, req.HireDate)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidDate
	}
	dob, err := parseOptionalDate(req.DateOfBirth)
	if err != nil {
		return EmployeeResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("create employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := s.checkCapacity(ctx, qtx, orgID); err != nil {
		return EmployeeResponse{}, err
	}

	empl := &Employee{
		ID:              uuid.New(),
		OrganizationID:  orgID,
		EmployeeID:      strings.TrimSpace(req.EmployeeID),
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:           req.Phone,
		DateOfBirth:     dob,
		Gender:          Gender(req.Gender),
		AddressLine1:    req.AddressLine1,
		AddressLine2:    req.AddressLine2,
		City:            req.City,
		State:           req.State,
		PostalCode:      req.PostalCode,
		Country:         req.Country,
		Position:        strings.TrimSpace(req.Position),
		EmploymentType:  EmploymentType(req.EmploymentType),
		HireDate:        hireDate,
		SalaryCurrency:  strings.ToUpper(req.SalaryCurrency),
		AnnualLeaveDays: DefaultAnnualLeaveDays,
		SickLeaveDays:   DefaultSickLeaveDays,
		Status:          StatusActive,
		IsActive:        true,
	}
	if empl.EmploymentType == "" {
		empl.EmploymentType = EmploymentFullTime
	}
	if empl.SalaryCurrency == "" {
		empl.SalaryCurrency = DefaultSalaryCurrency
	}
	if req.Salary != nil {
		empl.Salary.Decimal = *req.Salary
		empl.Salary.Valid = true
	}
	if req.AnnualLeaveDays != nil {
		empl.AnnualLeaveDays = *req.AnnualLeaveDays
	}
	if req.SickLeaveDays != nil {
		empl.SickLeaveDays = *req.SickLeaveDays
	}
	if req.UserID != nil && *req.UserID != "" {
		userID, err := uuid.Parse(*req.UserID)
		if err != nil {
			return EmployeeResponse{}, apperror.InvalidField("user")
		}
		empl.UserID = &userID
	}
	if empl.DepartmentID, err = s.resolveDepartment(ctx, qtx, orgID, req.DepartmentID); err != nil {
		return EmployeeResponse{}, err
	}
	if empl.ManagerID, err = s.resolveManager(ctx, qtx, empl, req.ManagerID); err != nil {
		return EmployeeResponse{}, err
	}

	if empl.EmployeeID == "" {
		next, err := s.counter.WithTx(tx).GetNextValue(ctx, orgID.String(), counter.TypeEmployeeCode)
		if err != nil {
			log.Error("create employee generate number failed", zap.Error(err))
			return EmployeeResponse{}, err
		}
		empl.EmployeeID = fmt.Sprintf("EMP-%06d", next)
	}

	if err := qtx.Create(ctx, empl); err != nil {
		log.Warn("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	evt := events.New(events.EmployeeCreated, orgID, "employee", empl.ID, s.now()).
		Notify(empl.UserID, events.KindSystem,
			"Welcome aboard",
			fmt.Sprintf("Your employee profile %s has been created.", empl.EmployeeID),
			"/employees/"+empl.ID.String()).
		From(p.UserID)
	evt.RequestID = contextutil.GetRequestID(ctx)
	if err := s.outbox.Enqueue(ctx, tx, evt); err != nil {
		log.Error("create employee outbox persist failed",
			zap.String("employee_id", empl.ID.String()),
			zap.Error(err),
		)
		return EmployeeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("create employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptions(ctx, orgID)

	log.Info("create employee success",
		zap.String("organization_id", orgID.String()),
		zap.String("employee_id", empl.ID.String()),
		zap.String("employee_code", empl.EmployeeID),
	)
	return mapToResponse(*empl), nil
}

func (s *service) List(ctx context.Context, p contextutil.Principal, organizationID string, req ListEmployeesRequest) ([]EmployeeResponse, error) {
	v, err := authz.ResolveScope(ctx, s.authorizer, p, organizationID)
	if err != nil {
		return nil, err
	}

	f := ListFilter{
		Status:         Status(req.Status),
		EmploymentType: EmploymentType(req.EmploymentType),
		IsActive:       req.IsActive,
		Search:         req.Search,
	}
	if req.Department != "" {
		deptID, err := uuid.Parse(req.Department)
		if err != nil {
			return nil, employeeerrors.ErrInvalidDepartment
		}
		f.DepartmentID = &deptID
	}

	empls, err := s.repo.List(ctx, v, f)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(empls), nil
}

// Options returns the active employees of one organization for pickers.
// Results are cached in Redis and concurrent misses share one query.
func (s *service) Options(ctx context.Context, p contextutil.Principal, organizationID string) ([]EmployeeOption, error) {
	orgID, err := authz.ParseOrganization(organizationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizer.Authorize(ctx, p, orgID, authz.CapabilityMember); err != nil {
		return nil, err
	}

	cacheKey := GetEmployeeOptionsKey(orgID.String())
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []EmployeeOption
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		empls, err := s.repo.ListOptions(ctx, orgID)
		if err != nil {
			return nil, err
		}

		resp := make([]EmployeeOption, len(empls))
		for i, e := range empls {
			resp[i] = EmployeeOption{
				ID:         e.ID.String(),
				EmployeeID: e.EmployeeID,
				FullName:   e.FullName(),
				Position:   e.Position,
			}
		}

		if s.rdb != nil {
			if data, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, data, employeeOptionsTTL).Err(); err != nil {
					s.logger.Warn("cache employee options failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]EmployeeOption), nil
}

func (s *service) GetByID(ctx context.Context, p contextutil.Principal, id string) (EmployeeResponse, error) {
	empl, err := s.load(ctx, s.repo, p, id, authz.CapabilityMember)
	if err != nil {
		return EmployeeResponse{}, err
	}
	return mapToResponse(*empl), nil
}

func (s *service) Update(ctx context.Context, p contextutil.Principal, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("update employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl, err := s.load(ctx, qtx, p, id, authz.CapabilityAdmin)
	if err != nil {
		return EmployeeResponse{}, err
	}

	if req.FirstName != nil {
		empl.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		empl.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		empl.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		empl.Phone = *req.Phone
	}
	if req.Position != nil {
		empl.Position = strings.TrimSpace(*req.Position)
	}
	if req.EmploymentType != nil {
		empl.EmploymentType = EmploymentType(*req.EmploymentType)
	}
	if req.TerminationDate != nil {
		if empl.TerminationDate, err = parseOptionalDate(*req.TerminationDate); err != nil {
			return EmployeeResponse{}, err
		}
	}
	if req.Salary != nil {
		empl.Salary.Decimal = *req.Salary
		empl.Salary.Valid = true
	}
	if req.AnnualLeaveDays != nil {
		empl.AnnualLeaveDays = *req.AnnualLeaveDays
	}
	if req.SickLeaveDays != nil {
		empl.SickLeaveDays = *req.SickLeaveDays
	}
	if req.Status != nil {
		empl.Status = Status(*req.Status)
	}
	if req.IsActive != nil {
		empl.IsActive = *req.IsActive
	}
	if req.DepartmentID != nil {
		if empl.DepartmentID, err = s.resolveDepartment(ctx, qtx, empl.OrganizationID, req.DepartmentID); err != nil {
			return EmployeeResponse{}, err
		}
	}
	if req.ManagerID != nil {
		if empl.ManagerID, err = s.resolveManager(ctx, qtx, empl, req.ManagerID); err != nil {
			return EmployeeResponse{}, err
		}
	}

	if err := qtx.Update(ctx, empl); err != nil {
		log.Warn("update employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("update employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptions(ctx, empl.OrganizationID)

	log.Info("update employee success", zap.String("employee_id", empl.ID.String()))
	return mapToResponse(*empl), nil
}

func (s *service) Delete(ctx context.Context, p contextutil.Principal, id string) error {
	log := contextutil.GetLogger(ctx, s.logger)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl, err := s.load(ctx, qtx, p, id, authz.CapabilityAdmin)
	if err != nil {
		return err
	}
	if err := qtx.Delete(ctx, empl.ID); err != nil {
		log.Error("delete employee failed", zap.Error(err))
		return mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidateOptions(ctx, empl.OrganizationID)

	log.Info("delete employee success", zap.String("employee_id", empl.ID.String()))
	return nil
}

func (s *service) Subordinates(ctx context.Context, p contextutil.Principal, id string) ([]EmployeeResponse, error) {
	empl, err := s.load(ctx, s.repo, p, id, authz.CapabilityMember)
	if err != nil {
		return nil, err
	}
	subs, err := s.repo.ListSubordinates(ctx, empl.ID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(subs), nil
}

// LeaveBalance reports annual leave consumed by approved requests starting in
// the current calendar year.
func (s *service) LeaveBalance(ctx context.Context, p contextutil.Principal, id string) (LeaveBalanceResponse, error) {
	empl, err := s.load(ctx, s.repo, p, id, authz.CapabilityMember)
	if err != nil {
		return LeaveBalanceResponse{}, err
	}

	year := s.now().UTC().Year()
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	used, err := s.repo.ApprovedLeaveDays(ctx, empl.ID, from, from.AddDate(1, 0, 0))
	if err != nil {
		return LeaveBalanceResponse{}, err
	}

	return LeaveBalanceResponse{
		AnnualLeaveTotal:     empl.AnnualLeaveDays,
		AnnualLeaveUsed:      used,
		AnnualLeaveRemaining: int64(empl.AnnualLeaveDays) - used,
		SickLeaveTotal:       empl.SickLeaveDays,
	}, nil
}

func (s *service) checkCapacity(ctx context.Context, repo Repository, orgID uuid.UUID) error {
	limit, err := repo.MaxEmployees(ctx, orgID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return employeeerrors.ErrOrganizationNotFound
		}
		return err
	}
	active, err := repo.CountActive(ctx, orgID)
	if err != nil {
		return err
	}
	if active >= int64(limit) {
		return employeeerrors.ErrCapacityReached
	}
	return nil
}

func (s *service) resolveDepartment(ctx context.Context, repo Repository, orgID uuid.UUID, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	deptID, err := uuid.Parse(*raw)
	if err != nil {
		return nil, employeeerrors.ErrInvalidDepartment
	}
	ok, err := repo.DepartmentInOrganization(ctx, deptID, orgID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, employeeerrors.ErrInvalidDepartment
	}
	return &deptID, nil
}

// resolveManager validates a manager reference for empl. The manager chain
// starting at the candidate must stay inside the organization and must not
// lead back to empl.
func (s *service) resolveManager(ctx context.Context, repo Repository, empl *Employee, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	managerID, err := uuid.Parse(*raw)
	if err != nil {
		return nil, employeeerrors.ErrInvalidManager
	}
	if managerID == empl.ID {
		return nil, employeeerrors.ErrManagerCycle
	}

	seen := map[uuid.UUID]bool{}
	cur := &managerID
	for cur != nil {
		if seen[*cur] || *cur == empl.ID {
			return nil, employeeerrors.ErrManagerCycle
		}
		seen[*cur] = true

		m, err := repo.GetByID(ctx, *cur)
		if err != nil {
			if dberr.IsNotFound(err) {
				return nil, employeeerrors.ErrInvalidManager
			}
			return nil, err
		}
		if m.OrganizationID != empl.OrganizationID {
			return nil, employeeerrors.ErrInvalidManager
		}
		cur = m.ManagerID
	}
	return &managerID, nil
}

func (s *service) load(ctx context.Context, repo Repository, p contextutil.Principal, id string, cap authz.Capability) (*Employee, error) {
	emplID, err := uuid.Parse(id)
	if err != nil {
		return nil, employeeerrors.ErrEmployeeNotFound
	}
	empl, err := repo.GetByID(ctx, emplID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if _, err := s.authorizer.AuthorizeObject(ctx, p, empl.OrganizationID, cap); err != nil {
		return nil, err
	}
	return empl, nil
}

func (s *service) invalidateOptions(ctx context.Context, orgID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	cacheKey := GetEmployeeOptionsKey(orgID.String())
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate employee options cache",
			zap.Error(err),
			zap.String("key", cacheKey),
		)
	}
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, employeeerrors.ErrInvalidDate
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func mapToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:              e.ID.String(),
		OrganizationID:  e.OrganizationID.String(),
		UserID:          uuidString(e.UserID),
		DepartmentID:    uuidString(e.DepartmentID),
		ManagerID:       uuidString(e.ManagerID),
		EmployeeID:      e.EmployeeID,
		FirstName:       e.FirstName,
		LastName:        e.LastName,
		FullName:        e.FullName(),
		Email:           e.Email,
		Phone:           e.Phone,
		DateOfBirth:     formatDate(e.DateOfBirth),
		Gender:          string(e.Gender),
		AddressLine1:    e.AddressLine1,
		AddressLine2:    e.AddressLine2,
		City:            e.City,
		State:           e.State,
		PostalCode:      e.PostalCode,
		Country:         e.Country,
		Position:        e.Position,
		EmploymentType:  string(e.EmploymentType),
		HireDate:        e.HireDate.Format(dateLayout),
		TerminationDate: formatDate(e.TerminationDate),
		SalaryCurrency:  e.SalaryCurrency,
		AnnualLeaveDays: e.AnnualLeaveDays,
		SickLeaveDays:   e.SickLeaveDays,
		Status:          string(e.Status),
		IsActive:        e.IsActive,
		CreatedAt:       e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       e.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if e.Salary.Valid {
		salary := e.Salary.Decimal
		resp.Salary = &salary
	}
	return resp
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}
