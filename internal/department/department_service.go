package department

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go-hrms/internal/authz"
	departmenterrors "go-hrms/internal/department/errors"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/dberr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, p contextutil.Principal, req CreateDepartmentRequest) (DepartmentResponse, error)
	List(ctx context.Context, p contextutil.Principal, organizationID string, req ListDepartmentsRequest) ([]DepartmentResponse, error)
	GetByID(ctx context.Context, p contextutil.Principal, id string) (DepartmentResponse, error)
	Update(ctx context.Context, p contextutil.Principal, id string, req UpdateDepartmentRequest) (DepartmentResponse, error)
	Delete(ctx context.Context, p contextutil.Principal, id string) error
	Employees(ctx context.Context, p contextutil.Principal, id string) ([]DepartmentEmployeeResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	authorizer authz.Authorizer
	logger     *zap.Logger
}

func NewService(db *sql.DB, repo Repository, authorizer authz.Authorizer, logger ...*zap.Logger) Service {
	l := zap.L().Named("department.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("department.service")
	}
	return &service{db: db, repo: repo, authorizer: authorizer, logger: l}
}

func (s *service) Create(ctx context.Context, p contextutil.Principal, req CreateDepartmentRequest) (DepartmentResponse, error) {
	orgID, err := authz.ParseOrganization(req.OrganizationID)
	if err != nil {
		return DepartmentResponse{}, err
	}
	if _, err := s.authorizer.Authorize(ctx, p, orgID, authz.CapabilityAdmin); err != nil {
		return DepartmentResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DepartmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	dept := &Department{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(req.Name),
		Code:           strings.TrimSpace(req.Code),
		Description:    req.Description,
		IsActive:       true,
	}
	if dept.ParentID, err = s.resolveParent(ctx, qtx, dept, req.ParentID); err != nil {
		return DepartmentResponse{}, err
	}
	if dept.ManagerID, err = s.resolveManager(ctx, qtx, orgID, req.ManagerID); err != nil {
		return DepartmentResponse{}, err
	}

	if err := qtx.Create(ctx, dept); err != nil {
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return DepartmentResponse{}, err
	}

	contextutil.GetLogger(ctx, s.logger).Info("department created",
		zap.String("organization_id", orgID.String()),
		zap.String("department_id", dept.ID.String()),
	)
	return mapToResponse(*dept), nil
}

func (s *service) List(ctx context.Context, p contextutil.Principal, organizationID string, req ListDepartmentsRequest) ([]DepartmentResponse, error) {
	v, err := authz.ResolveScope(ctx, s.authorizer, p, organizationID)
	if err != nil {
		return nil, err
	}

	f := ListFilter{IsActive: req.IsActive, Search: req.Search}
	if req.Parent != "" {
		parentID, err := uuid.Parse(req.Parent)
		if err != nil {
			return nil, departmenterrors.ErrInvalidParent
		}
		f.ParentID = &parentID
	}

	depts, err := s.repo.List(ctx, v, f)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(depts), nil
}

func (s *service) GetByID(ctx context.Context, p contextutil.Principal, id string) (DepartmentResponse, error) {
	dept, err := s.load(ctx, s.repo, p, id, authz.CapabilityMember)
	if err != nil {
		return DepartmentResponse{}, err
	}
	return mapToResponse(*dept), nil
}

func (s *service) Update(ctx context.Context, p contextutil.Principal, id string, req UpdateDepartmentRequest) (DepartmentResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DepartmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	dept, err := s.load(ctx, qtx, p, id, authz.CapabilityAdmin)
	if err != nil {
		return DepartmentResponse{}, err
	}

	if req.Name != nil {
		dept.Name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		dept.Code = strings.TrimSpace(*req.Code)
	}
	if req.Description != nil {
		dept.Description = *req.Description
	}
	if req.IsActive != nil {
		dept.IsActive = *req.IsActive
	}
	if req.ParentID != nil {
		if dept.ParentID, err = s.resolveParent(ctx, qtx, dept, req.ParentID); err != nil {
			return DepartmentResponse{}, err
		}
	}
	if req.ManagerID != nil {
		if dept.ManagerID, err = s.resolveManager(ctx, qtx, dept.OrganizationID, req.ManagerID); err != nil {
			return DepartmentResponse{}, err
		}
	}

	if err := qtx.Update(ctx, dept); err != nil {
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return DepartmentResponse{}, err
	}
	return mapToResponse(*dept), nil
}

func (s *service) Delete(ctx context.Context, p contextutil.Principal, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	dept, err := s.load(ctx, qtx, p, id, authz.CapabilityAdmin)
	if err != nil {
		return err
	}
	if err := qtx.Delete(ctx, dept.ID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) Employees(ctx context.Context, p contextutil.Principal, id string) ([]DepartmentEmployeeResponse, error) {
	dept, err := s.load(ctx, s.repo, p, id, authz.CapabilityMember)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListEmployees(ctx, dept.ID)
	if err != nil {
		return nil, err
	}

	out := make([]DepartmentEmployeeResponse, len(rows))
	for i, r := range rows {
		out[i] = DepartmentEmployeeResponse{
			ID:         r.ID.String(),
			EmployeeID: r.EmployeeID,
			FullName:   strings.TrimSpace(r.FirstName + " " + r.LastName),
			Email:      r.Email,
			Position:   r.Position,
			Status:     r.Status,
		}
	}
	return out, nil
}

// resolveParent validates a parent reference for dept. The parent must live
// in the same organization and must not be dept itself or one of its
// descendants.
func (s *service) resolveParent(ctx context.Context, repo Repository, dept *Department, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parentID, err := uuid.Parse(*raw)
	if err != nil {
		return nil, departmenterrors.ErrInvalidParent
	}
	if parentID == dept.ID {
		return nil, departmenterrors.ErrCycle
	}

	seen := map[uuid.UUID]bool{}
	cur := &parentID
	for cur != nil {
		if seen[*cur] {
			return nil, departmenterrors.ErrCycle
		}
		seen[*cur] = true

		ancestor, err := repo.GetByID(ctx, *cur)
		if err != nil {
			if dberr.IsNotFound(err) {
				return nil, departmenterrors.ErrInvalidParent
			}
			return nil, err
		}
		if ancestor.OrganizationID != dept.OrganizationID {
			return nil, departmenterrors.ErrInvalidParent
		}
		if dept.ID != uuid.Nil && ancestor.ID == dept.ID {
			return nil, departmenterrors.ErrCycle
		}
		cur = ancestor.ParentID
	}
	return &parentID, nil
}

func (s *service) resolveManager(ctx context.Context, repo Repository, orgID uuid.UUID, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	managerID, err := uuid.Parse(*raw)
	if err != nil {
		return nil, departmenterrors.ErrInvalidManager
	}
	ok, err := repo.EmployeeInOrganization(ctx, managerID, orgID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, departmenterrors.ErrInvalidManager
	}
	return &managerID, nil
}

func (s *service) load(ctx context.Context, repo Repository, p contextutil.Principal, id string, cap authz.Capability) (*Department, error) {
	deptID, err := uuid.Parse(id)
	if err != nil {
		return nil, departmenterrors.ErrDepartmentNotFound
	}
	dept, err := repo.GetByID(ctx, deptID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, departmenterrors.ErrDepartmentNotFound
		}
		return nil, err
	}
	if _, err := s.authorizer.AuthorizeObject(ctx, p, dept.OrganizationID, cap); err != nil {
		return nil, err
	}
	return dept, nil
}

func mapRepositoryError(err error) error {
	if _, ok := dberr.UniqueViolation(err); ok {
		return departmenterrors.ErrNameTaken
	}
	return err
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func mapToResponse(dept Department) DepartmentResponse {
	return DepartmentResponse{
		ID:             dept.ID.String(),
		OrganizationID: dept.OrganizationID.String(),
		Name:           dept.Name,
		Code:           dept.Code,
		Description:    dept.Description,
		ParentID:       uuidString(dept.ParentID),
		ManagerID:      uuidString(dept.ManagerID),
		IsActive:       dept.IsActive,
		CreatedAt:      dept.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      dept.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(depts []Department) []DepartmentResponse {
	res := make([]DepartmentResponse, len(depts))
	for i, d := range depts {
		res[i] = mapToResponse(d)
	}
	return res
}
