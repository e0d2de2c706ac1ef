package dberr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// UniqueViolation reports whether err is a unique constraint failure. The
// returned detail is the constraint name on Postgres and the column list on
// sqlite, so callers match on a column or index fragment.
func UniqueViolation(err error) (detail string, ok bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}

	msg := err.Error()
	if i := strings.Index(msg, "UNIQUE constraint failed:"); i >= 0 {
		return strings.TrimSpace(msg[i+len("UNIQUE constraint failed:"):]), true
	}
	if strings.Contains(strings.ToLower(msg), "duplicate key value") {
		return msg, true
	}
	return "", false
}

// IsNotFound wraps gorm.ErrRecordNotFound matching.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
