package leavetype

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"go-hrms/internal/authz"
	leavetypeerrors "go-hrms/internal/leavetype/errors"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/dberr"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	LeaveTypeListKeyPrefix = "leave_types:all:"
	leaveTypeListTTL       = 30 * time.Minute
)

func GetLeaveTypeListKey(organizationID string) string {
	return LeaveTypeListKeyPrefix + organizationID
}

type Service interface {
	Create(ctx context.Context, p contextutil.Principal, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	List(ctx context.Context, p contextutil.Principal, organizationID string, req ListLeaveTypesRequest) ([]LeaveTypeResponse, error)
	GetByID(ctx context.Context, p contextutil.Principal, id string) (LeaveTypeResponse, error)
	Update(ctx context.Context, p contextutil.Principal, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	Delete(ctx context.Context, p contextutil.Principal, id string) error
}

type service struct {
	db         *sql.DB
	repo       Repository
	rdb        *redis.Client
	authorizer authz.Authorizer
	sf         *singleflight.Group
	logger     *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, authorizer authz.Authorizer, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		rdb:        rdb,
		authorizer: authorizer,
		sf:         &singleflight.Group{},
		logger:     l,
	}
}

func (s *service) Create(ctx context.Context, p contextutil.Principal, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	orgID, err := authz.ParseOrganization(req.OrganizationID)
	if err != nil {
		return LeaveTypeResponse{}, err
	}
	if _, err := s.authorizer.Authorize(ctx, p, orgID, authz.CapabilityAdmin); err != nil {
		return LeaveTypeResponse{}, err
	}

	lt := &LeaveType{
		OrganizationID:   orgID,
		Name:             strings.TrimSpace(req.Name),
		Code:             strings.ToUpper(strings.TrimSpace(req.Code)),
		Description:      req.Description,
		IsPaid:           true,
		RequiresApproval: true,
		MaxDaysPerYear:   req.MaxDaysPerYear,
		Color:            req.Color,
		IsActive:         true,
	}
	if req.IsPaid != nil {
		lt.IsPaid = *req.IsPaid
	}
	if req.RequiresApproval != nil {
		lt.RequiresApproval = *req.RequiresApproval
	}
	if lt.Color == "" {
		lt.Color = DefaultColor
	}

	if err := s.repo.Create(ctx, lt); err != nil {
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}

	s.invalidate(ctx, orgID)

	contextutil.GetLogger(ctx, s.logger).Info("leave type created",
		zap.String("organization_id", orgID.String()),
		zap.String("leave_type_id", lt.ID.String()),
		zap.String("code", lt.Code),
	)
	return mapToResponse(*lt), nil
}

// List serves the unfiltered catalog of a single organization from Redis.
// Filtered or cross-organization listings always hit the database.
func (s *service) List(ctx context.Context, p contextutil.Principal, organizationID string, req ListLeaveTypesRequest) ([]LeaveTypeResponse, error) {
	v, err := authz.ResolveScope(ctx, s.authorizer, p, organizationID)
	if err != nil {
		return nil, err
	}

	if s.rdb == nil || organizationID == "" || req.IsActive != nil {
		types, err := s.repo.List(ctx, v, req.IsActive)
		if err != nil {
			return nil, err
		}
		return mapToListResponse(types), nil
	}

	cacheKey := GetLeaveTypeListKey(organizationID)
	if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
		var resp []LeaveTypeResponse
		if json.Unmarshal([]byte(cached), &resp) == nil {
			return resp, nil
		}
	}

	res, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		types, err := s.repo.List(ctx, v, nil)
		if err != nil {
			return nil, err
		}
		resp := mapToListResponse(types)
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, data, leaveTypeListTTL).Err(); err != nil {
				s.logger.Warn("cache leave types failed", zap.String("key", cacheKey), zap.Error(err))
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]LeaveTypeResponse), nil
}

func (s *service) GetByID(ctx context.Context, p contextutil.Principal, id string) (LeaveTypeResponse, error) {
	lt, err := s.load(ctx, s.repo, p, id, authz.CapabilityMember)
	if err != nil {
		return LeaveTypeResponse{}, err
	}
	return mapToResponse(*lt), nil
}

func (s *service) Update(ctx context.Context, p contextutil.Principal, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveTypeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lt, err := s.load(ctx, qtx, p, id, authz.CapabilityAdmin)
	if err != nil {
		return LeaveTypeResponse{}, err
	}

	if req.Name != nil {
		lt.Name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		lt.Code = strings.ToUpper(strings.TrimSpace(*req.Code))
	}
	if req.Description != nil {
		lt.Description = *req.Description
	}
	if req.IsPaid != nil {
		lt.IsPaid = *req.IsPaid
	}
	if req.RequiresApproval != nil {
		lt.RequiresApproval = *req.RequiresApproval
	}
	if req.MaxDaysPerYear != nil {
		// zero clears the yearly cap
		if *req.MaxDaysPerYear == 0 {
			lt.MaxDaysPerYear = nil
		} else {
			lt.MaxDaysPerYear = req.MaxDaysPerYear
		}
	}
	if req.Color != nil {
		lt.Color = *req.Color
	}
	if req.IsActive != nil {
		lt.IsActive = *req.IsActive
	}

	if err := qtx.Update(ctx, lt); err != nil {
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return LeaveTypeResponse{}, err
	}

	s.invalidate(ctx, lt.OrganizationID)
	return mapToResponse(*lt), nil
}

func (s *service) Delete(ctx context.Context, p contextutil.Principal, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lt, err := s.load(ctx, qtx, p, id, authz.CapabilityAdmin)
	if err != nil {
		return err
	}
	inUse, err := qtx.InUse(ctx, lt.ID)
	if err != nil {
		return err
	}
	if inUse {
		return leavetypeerrors.ErrLeaveTypeInUse
	}
	if err := qtx.Delete(ctx, lt.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidate(ctx, lt.OrganizationID)

	contextutil.GetLogger(ctx, s.logger).Info("leave type deleted", zap.String("leave_type_id", lt.ID.String()))
	return nil
}

func (s *service) load(ctx context.Context, repo Repository, p contextutil.Principal, id string, cap authz.Capability) (*LeaveType, error) {
	ltID, err := uuid.Parse(id)
	if err != nil {
		return nil, leavetypeerrors.ErrLeaveTypeNotFound
	}
	lt, err := repo.GetByID(ctx, ltID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return nil, err
	}
	if _, err := s.authorizer.AuthorizeObject(ctx, p, lt.OrganizationID, cap); err != nil {
		return nil, err
	}
	return lt, nil
}

func (s *service) invalidate(ctx context.Context, orgID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	cacheKey := GetLeaveTypeListKey(orgID.String())
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate leave type cache", zap.String("key", cacheKey), zap.Error(err))
	}
}

func mapRepositoryError(err error) error {
	if _, ok := dberr.UniqueViolation(err); ok {
		return leavetypeerrors.ErrCodeTaken
	}
	return err
}

func mapToResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:               lt.ID.String(),
		OrganizationID:   lt.OrganizationID.String(),
		Name:             lt.Name,
		Code:             lt.Code,
		Description:      lt.Description,
		IsPaid:           lt.IsPaid,
		RequiresApproval: lt.RequiresApproval,
		MaxDaysPerYear:   lt.MaxDaysPerYear,
		Color:            lt.Color,
		IsActive:         lt.IsActive,
		CreatedAt:        lt.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        lt.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(types []LeaveType) []LeaveTypeResponse {
	res := make([]LeaveTypeResponse, len(types))
	for i, lt := range types {
		res[i] = mapToResponse(lt)
	}
	return res
}
