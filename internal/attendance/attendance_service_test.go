package attendance_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-hrms/internal/attendance"
	attendanceerrors "go-hrms/internal/attendance/errors"
	"go-hrms/internal/authz/authztest"
	authzerrors "go-hrms/internal/authz/errors"
	"go-hrms/internal/employee"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/metrics"
	"go-hrms/internal/shared/testutil"
	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type attendanceFixture struct {
	db    *gorm.DB
	svc   attendance.Service
	clock time.Time

	orgA, orgB uuid.UUID

	mgr, alice, bob, noProfile, outsider contextutil.Principal

	aliceEmp, bobEmp, foreignEmp *employee.Employee
}

func setupAttendance(t *testing.T) *attendanceFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t, &employee.Employee{}, &attendance.Attendance{})
	sqlDB, err := db.DB()
	require.NoError(t, err)

	f := &attendanceFixture{
		db:        db,
		clock:     time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC),
		orgA:      uuid.New(),
		orgB:      uuid.New(),
		mgr:       contextutil.Principal{UserID: uuid.New()},
		alice:     contextutil.Principal{UserID: uuid.New()},
		bob:       contextutil.Principal{UserID: uuid.New()},
		noProfile: contextutil.Principal{UserID: uuid.New()},
		outsider:  contextutil.Principal{UserID: uuid.New()},
	}
	dir := authztest.NewDirectory().
		Grant(f.mgr.UserID, f.orgA, tenant.RoleManager).
		Grant(f.alice.UserID, f.orgA, tenant.RoleEmployee).
		Grant(f.bob.UserID, f.orgA, tenant.RoleEmployee).
		Grant(f.noProfile.UserID, f.orgA, tenant.RoleEmployee).
		Grant(f.outsider.UserID, f.orgB, tenant.RoleAdmin)

	seedEmployee(t, db, f.orgA, &f.mgr.UserID, "MGR-1", "Maria")
	f.aliceEmp = seedEmployee(t, db, f.orgA, &f.alice.UserID, "EMP-1", "Alice")
	f.bobEmp = seedEmployee(t, db, f.orgA, &f.bob.UserID, "EMP-2", "Bob")
	f.foreignEmp = seedEmployee(t, db, f.orgB, &f.outsider.UserID, "EMP-1", "Omar")

	svc := attendance.NewService(
		sqlDB,
		attendance.NewRepository(db),
		employee.NewRepository(db),
		authztest.NewEngine(dir),
		metrics.New(),
		zap.NewNop(),
	)
	f.svc = attendance.WithClock(svc, func() time.Time { return f.clock })
	return f
}

func seedEmployee(t *testing.T, db *gorm.DB, orgID uuid.UUID, userID *uuid.UUID, code, first string) *employee.Employee {
	t.Helper()
	e := &employee.Employee{
		OrganizationID: orgID,
		UserID:         userID,
		EmployeeID:     code,
		FirstName:      first,
		LastName:       "Test",
		Email:          first + "." + code + "@example.com",
		Position:       "Analyst",
		EmploymentType: employee.EmploymentFullTime,
		HireDate:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		SalaryCurrency: employee.DefaultSalaryCurrency,
		Status:         employee.StatusActive,
		IsActive:       true,
	}
	require.NoError(t, db.Create(e).Error)
	return e
}

func TestAttendanceService_CheckInCheckOut(t *testing.T) {
	f := setupAttendance(t)
	ctx := context.Background()

	status, err := f.svc.CurrentStatus(ctx, f.alice, "")
	require.NoError(t, err)
	assert.Equal(t, "none", status.Status)
	assert.False(t, status.IsClockedIn)
	assert.Nil(t, status.Attendance)

	_, err = f.svc.CheckOut(ctx, f.alice, "", attendance.CheckRequest{})
	assert.ErrorIs(t, err, attendanceerrors.ErrNotCheckedIn)

	in, err := f.svc.CheckIn(ctx, f.alice, "", attendance.CheckRequest{Notes: "office"})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", in.Date)
	assert.Equal(t, string(attendance.StatusPresent), in.Status)
	assert.Equal(t, f.orgA.String(), in.OrganizationID)
	require.NotNil(t, in.CheckIn)
	assert.Nil(t, in.CheckOut)
	require.NotNil(t, in.EmployeeDetail)
	assert.Equal(t, "Alice Test", in.EmployeeDetail.FullName)

	_, err = f.svc.CheckIn(ctx, f.alice, "", attendance.CheckRequest{})
	assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedIn)

	status, err = f.svc.CurrentStatus(ctx, f.alice, f.orgA.String())
	require.NoError(t, err)
	assert.True(t, status.IsClockedIn)
	assert.Equal(t, "present", status.Status)

	f.clock = f.clock.Add(-time.Hour)
	_, err = f.svc.CheckOut(ctx, f.alice, "", attendance.CheckRequest{})
	assert.ErrorIs(t, err, attendanceerrors.ErrCheckOutBeforeCheckIn)

	status, err = f.svc.CurrentStatus(ctx, f.alice, "")
	require.NoError(t, err)
	assert.True(t, status.IsClockedIn, "rejected check-out must leave the record open")

	f.clock = time.Date(2026, 3, 2, 17, 15, 0, 0, time.UTC)
	out, err := f.svc.CheckOut(ctx, f.alice, "", attendance.CheckRequest{})
	require.NoError(t, err)
	require.NotNil(t, out.CheckOut)
	assert.Equal(t, "8.75", out.HoursWorked)

	_, err = f.svc.CheckOut(ctx, f.alice, "", attendance.CheckRequest{})
	assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedOut)

	status, err = f.svc.CurrentStatus(ctx, f.alice, "")
	require.NoError(t, err)
	assert.False(t, status.IsClockedIn)
	require.NotNil(t, status.Attendance)
	assert.Equal(t, "8.75", status.Attendance.HoursWorked)

	t.Run("next day starts a new record", func(t *testing.T) {
		f.clock = time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
		next, err := f.svc.CheckIn(ctx, f.alice, "", attendance.CheckRequest{})
		require.NoError(t, err)
		assert.Equal(t, "2026-03-03", next.Date)
		assert.NotEqual(t, in.ID, next.ID)
	})
}

func TestAttendanceService_ProfileRequired(t *testing.T) {
	f := setupAttendance(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, f.noProfile, "", attendance.CheckRequest{})
	assert.ErrorIs(t, err, attendanceerrors.ErrNoEmployeeProfile)

	_, err = f.svc.CheckIn(ctx, f.alice, f.orgB.String(), attendance.CheckRequest{})
	assert.ErrorIs(t, err, authzerrors.ErrForbidden)
}

func TestAttendanceService_ConcurrentCheckIn(t *testing.T) {
	f := setupAttendance(t)
	ctx := context.Background()

	const callers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CheckIn(ctx, f.bob, "", attendance.CheckRequest{})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedIn):
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, callers-1, conflicts)

	var n int64
	require.NoError(t, f.db.Model(&attendance.Attendance{}).Where("employee_id = ?", f.bobEmp.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestAttendanceService_MarkAbsent(t *testing.T) {
	f := setupAttendance(t)
	ctx := context.Background()

	req := attendance.MarkAbsentRequest{EmployeeID: f.aliceEmp.ID.String(), Date: "2026-03-02", Notes: "sick"}

	_, err := f.svc.MarkAbsent(ctx, f.bob, req)
	assert.ErrorIs(t, err, authzerrors.ErrForbidden)

	_, err = f.svc.MarkAbsent(ctx, f.outsider, req)
	assert.ErrorIs(t, err, attendanceerrors.ErrEmployeeNotFound)

	resp, err := f.svc.MarkAbsent(ctx, f.mgr, req)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusAbsent), resp.Status)
	assert.Nil(t, resp.CheckIn)
	assert.Equal(t, "0.00", resp.HoursWorked)

	_, err = f.svc.MarkAbsent(ctx, f.mgr, req)
	assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyRecorded)

	t.Run("check in on an absent day flips it to present", func(t *testing.T) {
		in, err := f.svc.CheckIn(ctx, f.alice, "", attendance.CheckRequest{})
		require.NoError(t, err)
		assert.Equal(t, resp.ID, in.ID)
		assert.Equal(t, string(attendance.StatusPresent), in.Status)
		require.NotNil(t, in.CheckIn)
		assert.Equal(t, "sick", in.Notes)

		_, err = f.svc.CheckIn(ctx, f.alice, "", attendance.CheckRequest{})
		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedIn)

		var n int64
		require.NoError(t, f.db.Model(&attendance.Attendance{}).Where("employee_id = ?", f.aliceEmp.ID).Count(&n).Error)
		assert.EqualValues(t, 1, n)
	})
}

func TestAttendanceService_ListScopes(t *testing.T) {
	f := setupAttendance(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, f.alice, "", attendance.CheckRequest{})
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, f.bob, "", attendance.CheckRequest{})
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, f.outsider, "", attendance.CheckRequest{})
	require.NoError(t, err)
	_, err = f.svc.MarkAbsent(ctx, f.mgr, attendance.MarkAbsentRequest{EmployeeID: f.aliceEmp.ID.String(), Date: "2026-02-27"})
	require.NoError(t, err)

	t.Run("employee sees own records", func(t *testing.T) {
		items, err := f.svc.List(ctx, f.alice, "", attendance.ListAttendanceRequest{})
		require.NoError(t, err)
		require.Len(t, items, 2)
		for _, it := range items {
			assert.Equal(t, f.aliceEmp.ID.String(), it.EmployeeID)
			require.NotNil(t, it.EmployeeDetail)
			assert.Equal(t, "EMP-1", it.EmployeeDetail.EmployeeID)
			assert.Equal(t, "Alice Test", it.EmployeeDetail.FullName)
		}
		assert.Equal(t, "2026-03-02", items[0].Date)
	})

	t.Run("employee filter cannot widen the scope", func(t *testing.T) {
		items, err := f.svc.List(ctx, f.alice, "", attendance.ListAttendanceRequest{Employee: f.bobEmp.ID.String()})
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("manager sees the organization", func(t *testing.T) {
		items, err := f.svc.List(ctx, f.mgr, f.orgA.String(), attendance.ListAttendanceRequest{})
		require.NoError(t, err)
		assert.Len(t, items, 3)

		items, err = f.svc.List(ctx, f.mgr, "", attendance.ListAttendanceRequest{Status: "absent"})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "2026-02-27", items[0].Date)

		items, err = f.svc.List(ctx, f.mgr, "", attendance.ListAttendanceRequest{Date: "2026-03-02"})
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("admin of another organization", func(t *testing.T) {
		items, err := f.svc.List(ctx, f.outsider, "", attendance.ListAttendanceRequest{})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, f.foreignEmp.ID.String(), items[0].EmployeeID)
	})

	t.Run("my_attendance ignores the manager role", func(t *testing.T) {
		items, err := f.svc.MyAttendance(ctx, f.mgr, "")
		require.NoError(t, err)
		assert.Empty(t, items)

		items, err = f.svc.MyAttendance(ctx, f.bob, "")
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}
