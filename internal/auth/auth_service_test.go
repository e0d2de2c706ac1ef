package auth_test

import (
	"context"
	"testing"
	"time"

	"go-hrms/internal/auth"
	autherrors "go-hrms/internal/auth/errors"
	"go-hrms/internal/auth/token"
	"go-hrms/internal/authz/authztest"
	"go-hrms/internal/shared/testutil"
	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type authDeps struct {
	db      *gorm.DB
	tokens  *token.Manager
	dir     *authztest.Directory
	service auth.Service
}

func setupAuthService(t *testing.T) *authDeps {
	t.Helper()
	db := testutil.NewSQLiteDB(t, &auth.User{})
	tokens := token.NewManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	dir := authztest.NewDirectory()
	return &authDeps{
		db:      db,
		tokens:  tokens,
		dir:     dir,
		service: auth.NewService(auth.NewRepository(db), tokens, dir, zap.NewNop()),
	}
}

func register(t *testing.T, svc auth.Service, username, email string) auth.UserResponse {
	t.Helper()
	u, err := svc.Register(context.Background(), auth.RegisterRequest{
		Username:  username,
		Email:     email,
		Password:  "correct-horse",
		FirstName: "Jean",
		LastName:  "Dupont",
	})
	require.NoError(t, err)
	return u
}

func TestAuthService_Register(t *testing.T) {
	deps := setupAuthService(t)
	ctx := context.Background()

	u := register(t, deps.service, "jdupont", "Jean@Example.com")
	assert.Equal(t, "jean@example.com", u.Email)
	assert.Equal(t, "Jean Dupont", u.FullName)

	var stored auth.User
	require.NoError(t, deps.db.First(&stored, "id = ?", u.ID).Error)
	assert.NotEqual(t, "correct-horse", stored.Password)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := deps.service.Register(ctx, auth.RegisterRequest{Username: "jdupont", Email: "other@example.com", Password: "correct-horse"})
		assert.ErrorIs(t, err, autherrors.ErrUsernameTaken)
	})

	t.Run("duplicate email ignores case", func(t *testing.T) {
		_, err := deps.service.Register(ctx, auth.RegisterRequest{Username: "other", Email: "JEAN@example.com", Password: "correct-horse"})
		assert.ErrorIs(t, err, autherrors.ErrEmailAlreadyRegistered)
	})
}

func TestAuthService_LoginAndRefresh(t *testing.T) {
	deps := setupAuthService(t)
	ctx := context.Background()
	u := register(t, deps.service, "jdupont", "jean@example.com")

	t.Run("login by username", func(t *testing.T) {
		resp, err := deps.service.Login(ctx, auth.TokenRequest{Username: "jdupont", Password: "correct-horse"})
		require.NoError(t, err)
		assert.Equal(t, u.ID, resp.User.ID)

		claims, err := deps.tokens.Parse(resp.Access, token.TypeAccess)
		require.NoError(t, err)
		assert.Equal(t, u.ID, claims.UserID)
		assert.False(t, claims.IsSuperuser)

		var stored auth.User
		require.NoError(t, deps.db.First(&stored, "id = ?", u.ID).Error)
		assert.NotNil(t, stored.LastLogin)
	})

	t.Run("login by email", func(t *testing.T) {
		_, err := deps.service.Login(ctx, auth.TokenRequest{Username: "JEAN@example.com", Password: "correct-horse"})
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := deps.service.Login(ctx, auth.TokenRequest{Username: "jdupont", Password: "nope"})
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := deps.service.Login(ctx, auth.TokenRequest{Username: "ghost", Password: "nope"})
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("refresh issues a new pair", func(t *testing.T) {
		login, err := deps.service.Login(ctx, auth.TokenRequest{Username: "jdupont", Password: "correct-horse"})
		require.NoError(t, err)

		refreshed, err := deps.service.Refresh(ctx, login.Refresh)
		require.NoError(t, err)
		_, err = deps.tokens.Parse(refreshed.Access, token.TypeAccess)
		assert.NoError(t, err)
	})

	t.Run("access token cannot refresh", func(t *testing.T) {
		login, err := deps.service.Login(ctx, auth.TokenRequest{Username: "jdupont", Password: "correct-horse"})
		require.NoError(t, err)

		_, err = deps.service.Refresh(ctx, login.Access)
		assert.ErrorIs(t, err, autherrors.ErrWrongTokenType)
	})

	t.Run("inactive user cannot refresh", func(t *testing.T) {
		login, err := deps.service.Login(ctx, auth.TokenRequest{Username: "jdupont", Password: "correct-horse"})
		require.NoError(t, err)
		require.NoError(t, deps.db.Model(&auth.User{}).Where("id = ?", u.ID).Update("is_active", false).Error)

		_, err = deps.service.Refresh(ctx, login.Refresh)
		assert.ErrorIs(t, err, autherrors.ErrUserInactive)

		_, err = deps.service.Login(ctx, auth.TokenRequest{Username: "jdupont", Password: "correct-horse"})
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})
}

func TestAuthService_GetMe(t *testing.T) {
	deps := setupAuthService(t)
	u := register(t, deps.service, "jdupont", "jean@example.com")
	orgID := uuid.New()
	deps.dir.Grant(uuid.MustParse(u.ID), orgID, tenant.RoleManager)

	me, err := deps.service.GetMe(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "jdupont", me.Username)
	require.Len(t, me.Memberships, 1)
	assert.Equal(t, orgID.String(), me.Memberships[0].OrganizationID)
	assert.Equal(t, "manager", me.Memberships[0].Role)

	_, err = deps.service.GetMe(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, autherrors.ErrUserNotFound)
}
