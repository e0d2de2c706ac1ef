package authz_test

import (
	"context"
	"errors"
	"testing"

	"go-hrms/internal/authz"
	"go-hrms/internal/authz/authztest"
	authzerrors "go-hrms/internal/authz/errors"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingDirectory struct{}

func (failingDirectory) ActiveMembership(context.Context, uuid.UUID, uuid.UUID) (*tenant.Membership, error) {
	return nil, errors.New("db down")
}

func (failingDirectory) ActiveMemberships(context.Context, uuid.UUID) ([]tenant.Membership, error) {
	return nil, errors.New("db down")
}

func TestEngine_Allows_RoleHierarchy(t *testing.T) {
	engine := authztest.NewEngine(authztest.NewDirectory())

	tests := []struct {
		role tenant.Role
		want []authz.Capability
	}{
		{tenant.RoleEmployee, []authz.Capability{authz.CapabilityMember}},
		{tenant.RoleManager, []authz.Capability{authz.CapabilityMember, authz.CapabilityManagerOrAdmin}},
		{tenant.RoleAdmin, []authz.Capability{authz.CapabilityMember, authz.CapabilityManagerOrAdmin, authz.CapabilityAdmin}},
		{tenant.RoleOwner, authz.AllCapabilities},
		{"", []authz.Capability{}},
		{"intern", []authz.Capability{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, authz.CapabilitiesOf(engine, tt.role))
		})
	}
}

func TestEngine_Authorize(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	orgA, orgB := uuid.New(), uuid.New()

	dir := authztest.NewDirectory().
		Grant(userID, orgA, tenant.RoleAdmin).
		Grant(userID, orgB, tenant.RoleEmployee)
	engine := authztest.NewEngine(dir)
	p := contextutil.Principal{UserID: userID}

	t.Run("admin in A", func(t *testing.T) {
		role, err := engine.Authorize(ctx, p, orgA, authz.CapabilityAdmin)
		assert.NoError(t, err)
		assert.Equal(t, tenant.RoleAdmin, role)
	})

	t.Run("admin role does not leak into B", func(t *testing.T) {
		role, err := engine.Authorize(ctx, p, orgB, authz.CapabilityAdmin)
		assert.ErrorIs(t, err, authzerrors.ErrForbidden)
		assert.Equal(t, tenant.RoleEmployee, role)
	})

	t.Run("owner check fails for admin", func(t *testing.T) {
		_, err := engine.Authorize(ctx, p, orgA, authz.CapabilityOwner)
		assert.ErrorIs(t, err, authzerrors.ErrForbidden)
	})

	t.Run("no membership is forbidden", func(t *testing.T) {
		_, err := engine.Authorize(ctx, p, uuid.New(), authz.CapabilityMember)
		assert.ErrorIs(t, err, authzerrors.ErrForbidden)
	})

	t.Run("object check outside tenant is not found", func(t *testing.T) {
		_, err := engine.AuthorizeObject(ctx, p, uuid.New(), authz.CapabilityMember)
		assert.ErrorIs(t, err, authzerrors.ErrNotVisible)
	})

	t.Run("object check with low role is forbidden", func(t *testing.T) {
		_, err := engine.AuthorizeObject(ctx, p, orgB, authz.CapabilityManagerOrAdmin)
		assert.ErrorIs(t, err, authzerrors.ErrForbidden)
	})

	t.Run("superuser bypasses membership", func(t *testing.T) {
		role, err := engine.Authorize(ctx, contextutil.Principal{UserID: uuid.New(), IsSuperuser: true}, uuid.New(), authz.CapabilityOwner)
		assert.NoError(t, err)
		assert.Equal(t, tenant.RoleOwner, role)
	})
}

func TestEngine_DirectoryErrorPropagates(t *testing.T) {
	enforcer, err := authz.NewEnforcer()
	require.NoError(t, err)
	engine := authz.NewEngine(failingDirectory{}, enforcer)

	_, err = engine.Authorize(context.Background(), contextutil.Principal{UserID: uuid.New()}, uuid.New(), authz.CapabilityMember)
	assert.EqualError(t, err, "db down")
}

func TestResolveScope(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	orgA, orgB := uuid.New(), uuid.New()
	engine := authztest.NewEngine(authztest.NewDirectory().
		Grant(userID, orgA, tenant.RoleManager).
		Grant(userID, orgB, tenant.RoleEmployee))
	p := contextutil.Principal{UserID: userID}

	v, err := authz.ResolveScope(ctx, engine, p, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{orgA, orgB}, v.OrganizationIDs())

	v, err = authz.ResolveScope(ctx, engine, p, orgA.String())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{orgA}, v.OrganizationIDs())

	_, err = authz.ResolveScope(ctx, engine, p, uuid.NewString())
	assert.ErrorIs(t, err, authzerrors.ErrForbidden)

	_, err = authz.ResolveScope(ctx, engine, p, "not-a-uuid")
	assert.ErrorIs(t, err, authzerrors.ErrInvalidOrganization)

	full, err := authz.ResolveScope(ctx, engine, p, "")
	require.NoError(t, err)
	ids, all := authz.OrganizationsWith(engine, full, authz.CapabilityManagerOrAdmin)
	assert.False(t, all)
	assert.Equal(t, []uuid.UUID{orgA}, ids)
}
