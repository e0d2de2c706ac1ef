package member_test

import (
	"context"
	"testing"

	"go-hrms/internal/auth"
	"go-hrms/internal/authz"
	authzerrors "go-hrms/internal/authz/errors"
	"go-hrms/internal/member"
	membererrors "go-hrms/internal/member/errors"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/testutil"
	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type memberDeps struct {
	db      *gorm.DB
	service member.Service
	orgA    uuid.UUID
	orgB    uuid.UUID
}

func setupMemberService(t *testing.T) *memberDeps {
	t.Helper()
	db := testutil.NewSQLiteDB(t, &auth.User{}, &tenant.Membership{})
	sqlDB, err := db.DB()
	require.NoError(t, err)

	enforcer, err := authz.NewEnforcer()
	require.NoError(t, err)
	engine := authz.NewEngine(tenant.NewDirectory(db), enforcer, zap.NewNop())

	return &memberDeps{
		db:      db,
		service: member.NewService(sqlDB, member.NewRepository(db), engine, zap.NewNop()),
		orgA:    uuid.New(),
		orgB:    uuid.New(),
	}
}

func (d *memberDeps) user(t *testing.T, username string) contextutil.Principal {
	t.Helper()
	u := &auth.User{Username: username, Email: username + "@example.com", FirstName: "Test", LastName: username, Password: "x"}
	require.NoError(t, d.db.Create(u).Error)
	return contextutil.Principal{UserID: u.ID}
}

func (d *memberDeps) grant(t *testing.T, p contextutil.Principal, orgID uuid.UUID, role tenant.Role) string {
	t.Helper()
	m := &tenant.Membership{OrganizationID: orgID, UserID: p.UserID, Role: role, IsActive: true}
	require.NoError(t, d.db.Create(m).Error)
	return m.ID.String()
}

func ptr[T any](v T) *T { return &v }

func TestMemberService_Add(t *testing.T) {
	deps := setupMemberService(t)
	ctx := context.Background()

	owner := deps.user(t, "owner")
	admin := deps.user(t, "admin")
	staff := deps.user(t, "staff")
	deps.user(t, "newcomer")
	deps.grant(t, owner, deps.orgA, tenant.RoleOwner)
	deps.grant(t, admin, deps.orgA, tenant.RoleAdmin)
	deps.grant(t, staff, deps.orgA, tenant.RoleEmployee)

	req := member.AddMemberRequest{OrganizationID: deps.orgA.String(), Email: "NEWCOMER@example.com", Role: "manager"}

	resp, err := deps.service.Add(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, "manager", resp.Role)
	assert.Equal(t, "newcomer", resp.User.Username)
	assert.Equal(t, "Test newcomer", resp.User.FullName)
	assert.True(t, resp.IsActive)

	t.Run("duplicate", func(t *testing.T) {
		_, err := deps.service.Add(ctx, admin, req)
		assert.ErrorIs(t, err, membererrors.ErrAlreadyMember)
	})

	t.Run("unknown email", func(t *testing.T) {
		bad := req
		bad.Email = "ghost@example.com"
		_, err := deps.service.Add(ctx, admin, bad)
		assert.ErrorIs(t, err, membererrors.ErrUserNotFound)
	})

	t.Run("invalid role", func(t *testing.T) {
		bad := req
		bad.Role = "intern"
		_, err := deps.service.Add(ctx, admin, bad)
		assert.ErrorIs(t, err, membererrors.ErrInvalidRole)
	})

	t.Run("admin cannot grant owner", func(t *testing.T) {
		bad := member.AddMemberRequest{OrganizationID: deps.orgB.String(), Email: "staff@example.com", Role: "owner"}
		deps.grant(t, admin, deps.orgB, tenant.RoleAdmin)
		_, err := deps.service.Add(ctx, admin, bad)
		assert.ErrorIs(t, err, membererrors.ErrOwnerRequired)
	})

	t.Run("employee cannot add", func(t *testing.T) {
		other := member.AddMemberRequest{OrganizationID: deps.orgA.String(), Email: "owner@example.com", Role: "employee"}
		_, err := deps.service.Add(ctx, staff, other)
		assert.ErrorIs(t, err, authzerrors.ErrForbidden)
	})

	t.Run("missing organization", func(t *testing.T) {
		_, err := deps.service.Add(ctx, owner, member.AddMemberRequest{Email: "staff@example.com", Role: "employee"})
		assert.ErrorIs(t, err, authzerrors.ErrOrganizationRequired)
	})
}

func TestMemberService_List(t *testing.T) {
	deps := setupMemberService(t)
	ctx := context.Background()

	admin := deps.user(t, "admin")
	staff := deps.user(t, "staff")
	outsider := deps.user(t, "outsider")
	deps.grant(t, admin, deps.orgA, tenant.RoleAdmin)
	deps.grant(t, staff, deps.orgA, tenant.RoleEmployee)
	deps.grant(t, outsider, deps.orgB, tenant.RoleOwner)
	deps.grant(t, staff, deps.orgB, tenant.RoleEmployee)

	list, err := deps.service.List(ctx, admin, "", member.ListMembersRequest{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, m := range list {
		assert.Equal(t, deps.orgA.String(), m.OrganizationID)
	}

	t.Run("filters", func(t *testing.T) {
		list, err := deps.service.List(ctx, admin, "", member.ListMembersRequest{Role: "employee"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "staff", list[0].User.Username)

		list, err = deps.service.List(ctx, admin, "", member.ListMembersRequest{Search: "ADM"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "admin", list[0].User.Username)
	})

	t.Run("employees see no memberships", func(t *testing.T) {
		list, err := deps.service.List(ctx, staff, "", member.ListMembersRequest{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("foreign organization header", func(t *testing.T) {
		_, err := deps.service.List(ctx, admin, deps.orgB.String(), member.ListMembersRequest{})
		assert.ErrorIs(t, err, authzerrors.ErrForbidden)
	})

	t.Run("superuser sees everything", func(t *testing.T) {
		list, err := deps.service.List(ctx, contextutil.Principal{UserID: uuid.New(), IsSuperuser: true}, "", member.ListMembersRequest{})
		require.NoError(t, err)
		assert.Len(t, list, 4)
	})
}

func TestMemberService_Update(t *testing.T) {
	deps := setupMemberService(t)
	ctx := context.Background()

	owner := deps.user(t, "owner")
	admin := deps.user(t, "admin")
	staff := deps.user(t, "staff")
	outsider := deps.user(t, "outsider")
	ownerID := deps.grant(t, owner, deps.orgA, tenant.RoleOwner)
	deps.grant(t, admin, deps.orgA, tenant.RoleAdmin)
	staffID := deps.grant(t, staff, deps.orgA, tenant.RoleEmployee)
	deps.grant(t, outsider, deps.orgB, tenant.RoleOwner)

	resp, err := deps.service.Update(ctx, admin, staffID, member.UpdateMemberRequest{Role: ptr("manager")})
	require.NoError(t, err)
	assert.Equal(t, "manager", resp.Role)

	t.Run("last owner cannot step down", func(t *testing.T) {
		_, err := deps.service.Update(ctx, owner, ownerID, member.UpdateMemberRequest{Role: ptr("admin")})
		assert.ErrorIs(t, err, membererrors.ErrLastOwner)

		err = deps.service.Deactivate(ctx, owner, ownerID)
		assert.ErrorIs(t, err, membererrors.ErrLastOwner)
	})

	t.Run("admin cannot touch owners", func(t *testing.T) {
		_, err := deps.service.Update(ctx, admin, ownerID, member.UpdateMemberRequest{IsActive: ptr(false)})
		assert.ErrorIs(t, err, membererrors.ErrOwnerRequired)

		_, err = deps.service.Update(ctx, admin, staffID, member.UpdateMemberRequest{Role: ptr("owner")})
		assert.ErrorIs(t, err, membererrors.ErrOwnerRequired)
	})

	t.Run("second owner allows step down", func(t *testing.T) {
		_, err := deps.service.Update(ctx, owner, staffID, member.UpdateMemberRequest{Role: ptr("owner")})
		require.NoError(t, err)

		resp, err := deps.service.Update(ctx, owner, ownerID, member.UpdateMemberRequest{Role: ptr("admin")})
		require.NoError(t, err)
		assert.Equal(t, "admin", resp.Role)
	})

	t.Run("outsider cannot see member", func(t *testing.T) {
		_, err := deps.service.GetByID(ctx, outsider, staffID)
		assert.ErrorIs(t, err, authzerrors.ErrNotVisible)
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := deps.service.GetByID(ctx, owner, uuid.NewString())
		assert.ErrorIs(t, err, membererrors.ErrMemberNotFound)
	})
}
