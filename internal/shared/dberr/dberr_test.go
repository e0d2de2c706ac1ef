package dberr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestUniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantOK     bool
		wantDetail string
	}{
		{"nil", nil, false, ""},
		{"postgres", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_employees_email"}), true, "idx_employees_email"},
		{"postgres other code", &pgconn.PgError{Code: "23503"}, false, ""},
		{"sqlite", errors.New("UNIQUE constraint failed: employees.organization_id, employees.employee_id"), true, "employees.organization_id, employees.employee_id"},
		{"gorm translated", gorm.ErrDuplicatedKey, true, ""},
		{"unrelated", errors.New("connection reset"), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail, ok := UniqueViolation(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantDetail, detail)
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("find: %w", gorm.ErrRecordNotFound)))
	assert.False(t, IsNotFound(errors.New("x")))
}
