package authz

import (
	"context"
	"errors"

	authzerrors "go-hrms/internal/authz/errors"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/tenant"

	"github.com/casbin/casbin/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Authorizer interface {
	// Visibility returns the organizations the principal can read.
	Visibility(ctx context.Context, p contextutil.Principal) (tenant.Visibility, error)
	// Authorize checks cap against the role held in organizationID and
	// returns that role. Superusers pass every check as owner.
	Authorize(ctx context.Context, p contextutil.Principal, organizationID uuid.UUID, cap Capability) (tenant.Role, error)
	// AuthorizeObject is Authorize for an entity owned by organizationID.
	// A principal outside that organization gets ErrNotVisible.
	AuthorizeObject(ctx context.Context, p contextutil.Principal, organizationID uuid.UUID, cap Capability) (tenant.Role, error)
	Allows(role tenant.Role, cap Capability) bool
}

type Engine struct {
	directory tenant.Directory
	enforcer  *casbin.Enforcer
	logger    *zap.Logger
}

func NewEngine(directory tenant.Directory, enforcer *casbin.Enforcer, logger ...*zap.Logger) *Engine {
	l := zap.L().Named("authz.engine")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("authz.engine")
	}
	return &Engine{directory: directory, enforcer: enforcer, logger: l}
}

func (e *Engine) Visibility(ctx context.Context, p contextutil.Principal) (tenant.Visibility, error) {
	if p.IsSuperuser {
		return tenant.Superuser(), nil
	}
	memberships, err := e.directory.ActiveMemberships(ctx, p.UserID)
	if err != nil {
		return tenant.Visibility{}, err
	}
	return tenant.NewVisibility(memberships), nil
}

func (e *Engine) Authorize(ctx context.Context, p contextutil.Principal, organizationID uuid.UUID, cap Capability) (tenant.Role, error) {
	role, err := e.resolveRole(ctx, p, organizationID)
	if errors.Is(err, tenant.ErrNoMembership) {
		e.deny(ctx, p, organizationID, cap, "")
		return "", authzerrors.ErrForbidden
	}
	if err != nil {
		return "", err
	}
	if !e.Allows(role, cap) {
		e.deny(ctx, p, organizationID, cap, role)
		return role, authzerrors.ErrForbidden
	}
	return role, nil
}

func (e *Engine) AuthorizeObject(ctx context.Context, p contextutil.Principal, organizationID uuid.UUID, cap Capability) (tenant.Role, error) {
	role, err := e.resolveRole(ctx, p, organizationID)
	if errors.Is(err, tenant.ErrNoMembership) {
		e.deny(ctx, p, organizationID, cap, "")
		return "", authzerrors.ErrNotVisible
	}
	if err != nil {
		return "", err
	}
	if !e.Allows(role, cap) {
		e.deny(ctx, p, organizationID, cap, role)
		return role, authzerrors.ErrForbidden
	}
	return role, nil
}

func (e *Engine) Allows(role tenant.Role, cap Capability) bool {
	if role == "" {
		return false
	}
	ok, err := e.enforcer.Enforce(string(role), string(cap))
	if err != nil {
		e.logger.Error("casbin enforce failed", zap.String("role", string(role)), zap.String("capability", string(cap)), zap.Error(err))
		return false
	}
	return ok
}

// resolveRole always reads the membership for this exact organization.
func (e *Engine) resolveRole(ctx context.Context, p contextutil.Principal, organizationID uuid.UUID) (tenant.Role, error) {
	if p.IsSuperuser {
		return tenant.RoleOwner, nil
	}
	m, err := e.directory.ActiveMembership(ctx, p.UserID, organizationID)
	if err != nil {
		return "", err
	}
	return m.Role, nil
}

func (e *Engine) deny(ctx context.Context, p contextutil.Principal, organizationID uuid.UUID, cap Capability, role tenant.Role) {
	contextutil.GetLogger(ctx, e.logger).Info("authorization denied",
		zap.String("user_id", p.UserID.String()),
		zap.String("organization_id", organizationID.String()),
		zap.String("capability", string(cap)),
		zap.String("role", string(role)),
	)
}

// CapabilitiesOf lists the capabilities granted to role.
func CapabilitiesOf(a Authorizer, role tenant.Role) []Capability {
	caps := make([]Capability, 0, len(AllCapabilities))
	for _, c := range AllCapabilities {
		if a.Allows(role, c) {
			caps = append(caps, c)
		}
	}
	return caps
}

// OrganizationsWith returns the organizations of v where the held role grants
// cap. all is true for superuser visibility.
func OrganizationsWith(a Authorizer, v tenant.Visibility, cap Capability) (ids []uuid.UUID, all bool) {
	if v.All {
		return nil, true
	}
	for _, id := range v.OrganizationIDs() {
		if a.Allows(v.Roles[id], cap) {
			ids = append(ids, id)
		}
	}
	return ids, false
}

// ResolveScope returns the principal's visibility, narrowed to organizationID
// when one is named. Naming an organization the principal does not belong to
// is forbidden.
func ResolveScope(ctx context.Context, a Authorizer, p contextutil.Principal, organizationID string) (tenant.Visibility, error) {
	v, err := a.Visibility(ctx, p)
	if err != nil {
		return tenant.Visibility{}, err
	}
	if organizationID == "" {
		return v, nil
	}

	orgID, err := uuid.Parse(organizationID)
	if err != nil {
		return tenant.Visibility{}, authzerrors.ErrInvalidOrganization
	}
	narrowed, ok := v.Narrow(orgID)
	if !ok {
		return tenant.Visibility{}, authzerrors.ErrForbidden
	}
	return narrowed, nil
}

// ParseOrganization validates a required organization reference.
func ParseOrganization(organizationID string) (uuid.UUID, error) {
	if organizationID == "" {
		return uuid.Nil, authzerrors.ErrOrganizationRequired
	}
	id, err := uuid.Parse(organizationID)
	if err != nil {
		return uuid.Nil, authzerrors.ErrInvalidOrganization
	}
	return id, nil
}

// PrincipalFrom returns the authenticated principal stored on ctx.
func PrincipalFrom(ctx context.Context) (contextutil.Principal, error) {
	p, ok := contextutil.GetPrincipal(ctx)
	if !ok {
		return contextutil.Principal{}, authzerrors.ErrUnauthenticated
	}
	return p, nil
}
