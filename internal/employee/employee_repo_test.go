package employee_test

import (
	"context"
	"testing"
	"time"

	"go-hrms/internal/employee"
	"go-hrms/internal/shared/testutil"
	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepoTest(t *testing.T) (*gorm.DB, employee.Repository) {
	t.Helper()
	db := testutil.NewSQLiteDB(t, &employee.Employee{})
	require.NoError(t, db.Exec(`CREATE TABLE organizations (id TEXT PRIMARY KEY, is_active BOOLEAN, max_employees INTEGER)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE departments (id TEXT PRIMARY KEY, organization_id TEXT, deleted_at DATETIME)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE leave_requests (
		id TEXT PRIMARY KEY, employee_id TEXT, status TEXT, start_date DATETIME, total_days INTEGER)`).Error)
	return db, employee.NewRepository(db)
}

func seedEmployee(t *testing.T, repo employee.Repository, orgID uuid.UUID, code, last string, active bool) *employee.Employee {
	t.Helper()
	e := &employee.Employee{
		OrganizationID: orgID,
		EmployeeID:     code,
		FirstName:      "Test",
		LastName:       last,
		Email:          code + "@example.com",
		Position:       "Analyst",
		EmploymentType: employee.EmploymentFullTime,
		HireDate:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		SalaryCurrency: employee.DefaultSalaryCurrency,
		Status:         employee.StatusActive,
		IsActive:       active,
	}
	require.NoError(t, repo.Create(context.Background(), e))
	return e
}

func TestEmployeeRepository_ListIsScoped(t *testing.T) {
	_, repo := setupRepoTest(t)
	ctx := context.Background()
	orgA, orgB := uuid.New(), uuid.New()

	seedEmployee(t, repo, orgA, "A-1", "Zola", true)
	inactive := seedEmployee(t, repo, orgA, "A-2", "Abel", false)
	seedEmployee(t, repo, orgB, "B-1", "Other", true)

	stored, err := repo.GetByID(ctx, inactive.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	v := tenant.Visibility{Roles: map[uuid.UUID]tenant.Role{orgA: tenant.RoleEmployee}}
	list, err := repo.List(ctx, v, employee.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Abel", list[0].LastName)

	active := true
	list, err = repo.List(ctx, v, employee.ListFilter{IsActive: &active})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "A-1", list[0].EmployeeID)

	list, err = repo.List(ctx, tenant.Visibility{}, employee.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = repo.List(ctx, tenant.Superuser(), employee.ListFilter{Search: "other"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, orgB, list[0].OrganizationID)
}

func TestEmployeeRepository_DuplicateEmployeeIDPerOrganization(t *testing.T) {
	_, repo := setupRepoTest(t)
	orgA, orgB := uuid.New(), uuid.New()

	seedEmployee(t, repo, orgA, "EMP-1", "One", true)
	// same code in another organization is fine
	e := &employee.Employee{
		OrganizationID: orgB,
		EmployeeID:     "EMP-1",
		Email:          "someone@example.com",
		HireDate:       time.Now(),
		IsActive:       true,
	}
	require.NoError(t, repo.Create(context.Background(), e))

	dup := &employee.Employee{
		OrganizationID: orgA,
		EmployeeID:     "EMP-1",
		Email:          "other@example.com",
		HireDate:       time.Now(),
		IsActive:       true,
	}
	assert.Error(t, repo.Create(context.Background(), dup))
}

func TestEmployeeRepository_Capacity(t *testing.T) {
	db, repo := setupRepoTest(t)
	ctx := context.Background()
	orgID := uuid.New()

	_, err := repo.MaxEmployees(ctx, orgID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, db.Exec(`INSERT INTO organizations (id, is_active, max_employees) VALUES (?, ?, ?)`, orgID, true, 50).Error)
	limit, err := repo.MaxEmployees(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, 50, limit)

	seedEmployee(t, repo, orgID, "E-1", "One", true)
	seedEmployee(t, repo, orgID, "E-2", "Two", false)
	n, err := repo.CountActive(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestEmployeeRepository_SubordinatesAndOptions(t *testing.T) {
	_, repo := setupRepoTest(t)
	ctx := context.Background()
	orgID := uuid.New()

	boss := seedEmployee(t, repo, orgID, "E-1", "Boss", true)
	report := seedEmployee(t, repo, orgID, "E-2", "Report", true)
	gone := seedEmployee(t, repo, orgID, "E-3", "Gone", false)
	report.ManagerID = &boss.ID
	gone.ManagerID = &boss.ID
	require.NoError(t, repo.Update(ctx, report))
	require.NoError(t, repo.Update(ctx, gone))

	subs, err := repo.ListSubordinates(ctx, boss.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, report.ID, subs[0].ID)

	opts, err := repo.ListOptions(ctx, orgID)
	require.NoError(t, err)
	assert.Len(t, opts, 2)

	require.NoError(t, repo.Delete(ctx, report.ID))
	_, err = repo.GetByID(ctx, report.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEmployeeRepository_ApprovedLeaveDays(t *testing.T) {
	db, repo := setupRepoTest(t)
	ctx := context.Background()
	emplID := uuid.New()
	day := func(m time.Month, d int) time.Time { return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC) }

	for _, row := range []struct {
		status string
		start  time.Time
		days   int
	}{
		{"approved", day(time.February, 2), 3},
		{"approved", day(time.July, 6), 5},
		{"pending", day(time.March, 2), 4},
		{"approved", time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC), 2},
	} {
		require.NoError(t, db.Exec(`INSERT INTO leave_requests (id, employee_id, status, start_date, total_days) VALUES (?, ?, ?, ?, ?)`,
			uuid.NewString(), emplID, row.status, row.start, row.days).Error)
	}

	used, err := repo.ApprovedLeaveDays(ctx, emplID, day(time.January, 1), time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(8), used)

	used, err = repo.ApprovedLeaveDays(ctx, uuid.New(), day(time.January, 1), time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, used)
}
