package counter

import (
	"context"
	"testing"

	"go-hrms/internal/shared/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_GetNextValue_IncrementsPerOrganization(t *testing.T) {
	db := testutil.NewSQLiteDB(t, &OrganizationCounter{})
	repo := NewRepository(db)
	ctx := context.Background()

	orgA := uuid.NewString()
	orgB := uuid.NewString()

	v, err := repo.GetNextValue(ctx, orgA, TypeEmployeeCode)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = repo.GetNextValue(ctx, orgA, TypeEmployeeCode)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	v, err = repo.GetNextValue(ctx, orgB, TypeEmployeeCode)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestRepository_WithTx_RollbackDiscardsIncrement(t *testing.T) {
	db := testutil.NewSQLiteDB(t, &OrganizationCounter{})
	sqlDB, err := db.DB()
	require.NoError(t, err)

	repo := NewRepository(db)
	ctx := context.Background()
	org := uuid.NewString()

	tx, err := sqlDB.BeginTx(ctx, nil)
	require.NoError(t, err)
	v, err := repo.WithTx(tx).GetNextValue(ctx, org, TypeEmployeeCode)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	require.NoError(t, tx.Rollback())

	v, err = repo.GetNextValue(ctx, org, TypeEmployeeCode)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}
