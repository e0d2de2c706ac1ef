package member

import (
	"context"
	"database/sql"
	"time"

	"go-hrms/internal/authz"
	membererrors "go-hrms/internal/member/errors"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/dberr"
	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, p contextutil.Principal, organizationID string, req ListMembersRequest) ([]MemberResponse, error)
	GetByID(ctx context.Context, p contextutil.Principal, id string) (MemberResponse, error)
	Add(ctx context.Context, p contextutil.Principal, req AddMemberRequest) (MemberResponse, error)
	Update(ctx context.Context, p contextutil.Principal, id string, req UpdateMemberRequest) (MemberResponse, error)
	Deactivate(ctx context.Context, p contextutil.Principal, id string) error
}

type service struct {
	db         *sql.DB
	repo       Repository
	authorizer authz.Authorizer
	logger     *zap.Logger
}

func NewService(db *sql.DB, repo Repository, authorizer authz.Authorizer, logger ...*zap.Logger) Service {
	l := zap.L().Named("member.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("member.service")
	}
	return &service{db: db, repo: repo, authorizer: authorizer, logger: l}
}

// List returns memberships of the organizations where the caller is an
// admin, optionally narrowed to organizationID.
func (s *service) List(ctx context.Context, p contextutil.Principal, organizationID string, req ListMembersRequest) ([]MemberResponse, error) {
	v, err := authz.ResolveScope(ctx, s.authorizer, p, organizationID)
	if err != nil {
		return nil, err
	}

	f := ListFilter{Role: tenant.Role(req.Role), IsActive: req.IsActive, Search: req.Search}
	ids, all := authz.OrganizationsWith(s.authorizer, v, authz.CapabilityAdmin)
	if !all {
		f.OrganizationIDs = ids
		if f.OrganizationIDs == nil {
			f.OrganizationIDs = []uuid.UUID{}
		}
	}

	rows, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]MemberResponse, 0, len(rows))
	for i := range rows {
		out = append(out, mapToResponse(&rows[i]))
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, p contextutil.Principal, id string) (MemberResponse, error) {
	row, _, err := s.load(ctx, s.repo, p, id)
	if err != nil {
		return MemberResponse{}, err
	}
	return mapToResponse(row), nil
}

func (s *service) Add(ctx context.Context, p contextutil.Principal, req AddMemberRequest) (MemberResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	orgID, err := authz.ParseOrganization(req.OrganizationID)
	if err != nil {
		return MemberResponse{}, err
	}
	role := tenant.Role(req.Role)
	if !role.Valid() {
		return MemberResponse{}, membererrors.ErrInvalidRole
	}

	actorRole, err := s.authorizer.Authorize(ctx, p, orgID, authz.CapabilityAdmin)
	if err != nil {
		return MemberResponse{}, err
	}
	if role == tenant.RoleOwner && actorRole != tenant.RoleOwner {
		return MemberResponse{}, membererrors.ErrOwnerRequired
	}

	userID, err := s.repo.FindUserIDByEmail(ctx, req.Email)
	if err != nil {
		if dberr.IsNotFound(err) {
			return MemberResponse{}, membererrors.ErrUserNotFound
		}
		return MemberResponse{}, err
	}

	m := &tenant.Membership{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
		IsActive:       true,
		JoinedAt:       time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		if _, ok := dberr.UniqueViolation(err); ok {
			return MemberResponse{}, membererrors.ErrAlreadyMember
		}
		log.Error("add member failed", zap.Error(err))
		return MemberResponse{}, err
	}

	row, err := s.repo.GetByID(ctx, m.ID)
	if err != nil {
		return MemberResponse{}, err
	}
	log.Info("member added",
		zap.String("organization_id", orgID.String()),
		zap.String("user_id", userID.String()),
		zap.String("role", string(role)),
	)
	return mapToResponse(row), nil
}

func (s *service) Update(ctx context.Context, p contextutil.Principal, id string, req UpdateMemberRequest) (MemberResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return MemberResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	row, actorRole, err := s.load(ctx, qtx, p, id)
	if err != nil {
		return MemberResponse{}, err
	}
	m := row.Membership
	if req.Role != nil {
		role := tenant.Role(*req.Role)
		if !role.Valid() {
			return MemberResponse{}, membererrors.ErrInvalidRole
		}
		m.Role = role
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}

	if err := s.guardOwnership(ctx, qtx, actorRole, row.Membership, m); err != nil {
		return MemberResponse{}, err
	}
	if err := qtx.Update(ctx, &m); err != nil {
		return MemberResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return MemberResponse{}, err
	}

	row.Membership = m
	return mapToResponse(row), nil
}

func (s *service) Deactivate(ctx context.Context, p contextutil.Principal, id string) error {
	inactive := false
	_, err := s.Update(ctx, p, id, UpdateMemberRequest{IsActive: &inactive})
	return err
}

// guardOwnership enforces that only owners touch owner memberships and that
// an organization never loses its last active owner.
func (s *service) guardOwnership(ctx context.Context, repo Repository, actorRole tenant.Role, before, after tenant.Membership) error {
	touchesOwner := before.Role == tenant.RoleOwner || after.Role == tenant.RoleOwner
	if touchesOwner && actorRole != tenant.RoleOwner {
		return membererrors.ErrOwnerRequired
	}

	wasActiveOwner := before.Role == tenant.RoleOwner && before.IsActive
	staysActiveOwner := after.Role == tenant.RoleOwner && after.IsActive
	if wasActiveOwner && !staysActiveOwner {
		n, err := repo.CountActiveOwners(ctx, before.OrganizationID)
		if err != nil {
			return err
		}
		if n <= 1 {
			return membererrors.ErrLastOwner
		}
	}
	return nil
}

// load fetches a membership and resolves the caller's role in its
// organization. Callers outside the organization get not found.
func (s *service) load(ctx context.Context, repo Repository, p contextutil.Principal, id string) (*MemberRow, tenant.Role, error) {
	mid, err := uuid.Parse(id)
	if err != nil {
		return nil, "", membererrors.ErrMemberNotFound
	}

	row, err := repo.GetByID(ctx, mid)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, "", membererrors.ErrMemberNotFound
		}
		return nil, "", err
	}

	role, err := s.authorizer.AuthorizeObject(ctx, p, row.OrganizationID, authz.CapabilityAdmin)
	if err != nil {
		return nil, "", err
	}
	return row, role, nil
}

func mapToResponse(r *MemberRow) MemberResponse {
	fullName := r.FirstName
	if r.LastName != "" {
		if fullName != "" {
			fullName += " "
		}
		fullName += r.LastName
	}
	return MemberResponse{
		ID:             r.ID.String(),
		OrganizationID: r.OrganizationID.String(),
		User: UserSummary{
			ID:       r.UserID.String(),
			Username: r.Username,
			Email:    r.Email,
			FullName: fullName,
		},
		Role:     string(r.Role),
		IsActive: r.IsActive,
		JoinedAt: r.JoinedAt.UTC().Format(time.RFC3339),
	}
}
