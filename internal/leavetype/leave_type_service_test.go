package leavetype_test

import (
	"context"
	"testing"

	"go-hrms/internal/authz/authztest"
	authzerrors "go-hrms/internal/authz/errors"
	"go-hrms/internal/leavetype"
	leavetypeerrors "go-hrms/internal/leavetype/errors"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/testutil"
	"go-hrms/internal/tenant"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db      *gorm.DB
	mr      *miniredis.Miniredis
	service leavetype.Service
	orgA    uuid.UUID
	orgB    uuid.UUID
	admin   contextutil.Principal
	staff   contextutil.Principal
	outside contextutil.Principal
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()
	db := testutil.NewSQLiteDB(t, &leavetype.LeaveType{})
	require.NoError(t, db.Exec(`CREATE TABLE leave_requests (id TEXT PRIMARY KEY, leave_type_id TEXT)`).Error)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	sqlDB, err := db.DB()
	require.NoError(t, err)

	deps := &serviceDeps{
		db:      db,
		mr:      mr,
		orgA:    uuid.New(),
		orgB:    uuid.New(),
		admin:   contextutil.Principal{UserID: uuid.New()},
		staff:   contextutil.Principal{UserID: uuid.New()},
		outside: contextutil.Principal{UserID: uuid.New()},
	}
	dir := authztest.NewDirectory().
		Grant(deps.admin.UserID, deps.orgA, tenant.RoleAdmin).
		Grant(deps.staff.UserID, deps.orgA, tenant.RoleEmployee).
		Grant(deps.outside.UserID, deps.orgB, tenant.RoleOwner)
	deps.service = leavetype.NewService(sqlDB, leavetype.NewRepository(db), rdb, authztest.NewEngine(dir), zap.NewNop())
	return deps
}

func boolptr(b bool) *bool { return &b }

func TestLeaveTypeService_Create(t *testing.T) {
	deps := setupServiceTest(t)
	ctx := context.Background()

	t.Run("defaults and explicit flags", func(t *testing.T) {
		resp, err := deps.service.Create(ctx, deps.admin, leavetype.CreateLeaveTypeRequest{
			OrganizationID:   deps.orgA.String(),
			Name:             "Sick leave",
			Code:             "sick",
			IsPaid:           boolptr(false),
			RequiresApproval: boolptr(false),
		})
		require.NoError(t, err)
		assert.Equal(t, "SICK", resp.Code)
		assert.Equal(t, leavetype.DefaultColor, resp.Color)
		assert.False(t, resp.IsPaid)
		assert.False(t, resp.RequiresApproval)
		assert.True(t, resp.IsActive)

		got, err := deps.service.GetByID(ctx, deps.staff, resp.ID)
		require.NoError(t, err)
		assert.False(t, got.IsPaid)
		assert.False(t, got.RequiresApproval)
	})

	t.Run("code unique per organization", func(t *testing.T) {
		_, err := deps.service.Create(ctx, deps.admin, leavetype.CreateLeaveTypeRequest{
			OrganizationID: deps.orgA.String(), Name: "Sick again", Code: "SICK",
		})
		assert.ErrorIs(t, err, leavetypeerrors.ErrCodeTaken)

		_, err = deps.service.Create(ctx, deps.outside, leavetype.CreateLeaveTypeRequest{
			OrganizationID: deps.orgB.String(), Name: "Sick", Code: "SICK",
		})
		assert.NoError(t, err)
	})

	t.Run("employee cannot create", func(t *testing.T) {
		_, err := deps.service.Create(ctx, deps.staff, leavetype.CreateLeaveTypeRequest{
			OrganizationID: deps.orgA.String(), Name: "Paid", Code: "PAID",
		})
		assert.ErrorIs(t, err, authzerrors.ErrForbidden)
	})
}

func TestLeaveTypeService_ListCache(t *testing.T) {
	deps := setupServiceTest(t)
	ctx := context.Background()
	key := leavetype.GetLeaveTypeListKey(deps.orgA.String())

	_, err := deps.service.Create(ctx, deps.admin, leavetype.CreateLeaveTypeRequest{
		OrganizationID: deps.orgA.String(), Name: "Paid leave", Code: "PAID",
	})
	require.NoError(t, err)

	list, err := deps.service.List(ctx, deps.staff, deps.orgA.String(), leavetype.ListLeaveTypesRequest{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, deps.mr.Exists(key))

	created, err := deps.service.Create(ctx, deps.admin, leavetype.CreateLeaveTypeRequest{
		OrganizationID: deps.orgA.String(), Name: "Maternity", Code: "MAT",
	})
	require.NoError(t, err)
	assert.False(t, deps.mr.Exists(key))

	list, err = deps.service.List(ctx, deps.staff, deps.orgA.String(), leavetype.ListLeaveTypesRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = deps.service.Update(ctx, deps.admin, created.ID, leavetype.UpdateLeaveTypeRequest{IsActive: boolptr(false)})
	require.NoError(t, err)

	list, err = deps.service.List(ctx, deps.staff, deps.orgA.String(), leavetype.ListLeaveTypesRequest{IsActive: boolptr(true)})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "PAID", list[0].Code)

	_, err = deps.service.List(ctx, deps.outside, deps.orgA.String(), leavetype.ListLeaveTypesRequest{})
	assert.ErrorIs(t, err, authzerrors.ErrForbidden)
}

func TestLeaveTypeService_UpdateAndDelete(t *testing.T) {
	deps := setupServiceTest(t)
	ctx := context.Background()

	max := 20
	lt, err := deps.service.Create(ctx, deps.admin, leavetype.CreateLeaveTypeRequest{
		OrganizationID: deps.orgA.String(), Name: "Paid leave", Code: "PAID", MaxDaysPerYear: &max,
	})
	require.NoError(t, err)

	_, err = deps.service.Update(ctx, deps.outside, lt.ID, leavetype.UpdateLeaveTypeRequest{})
	assert.ErrorIs(t, err, authzerrors.ErrNotVisible)

	zero := 0
	updated, err := deps.service.Update(ctx, deps.admin, lt.ID, leavetype.UpdateLeaveTypeRequest{MaxDaysPerYear: &zero})
	require.NoError(t, err)
	assert.Nil(t, updated.MaxDaysPerYear)

	require.NoError(t, deps.db.Exec(`INSERT INTO leave_requests (id, leave_type_id) VALUES (?, ?)`, uuid.NewString(), lt.ID).Error)
	assert.ErrorIs(t, deps.service.Delete(ctx, deps.admin, lt.ID), leavetypeerrors.ErrLeaveTypeInUse)

	require.NoError(t, deps.db.Exec(`DELETE FROM leave_requests`).Error)
	require.NoError(t, deps.service.Delete(ctx, deps.admin, lt.ID))

	_, err = deps.service.GetByID(ctx, deps.admin, lt.ID)
	assert.ErrorIs(t, err, leavetypeerrors.ErrLeaveTypeNotFound)
}
