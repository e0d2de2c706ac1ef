package authzerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"You do not have permission to perform this action",
		http.StatusForbidden,
	)
	// ErrNotVisible is returned by object-level checks so callers cannot tell
	// a foreign tenant's entity apart from a missing one.
	ErrNotVisible = apperror.New(
		apperror.CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)
	ErrOrganizationRequired = apperror.New(
		apperror.CodeValidation,
		"organization is required",
		http.StatusBadRequest,
	)
	ErrInvalidOrganization = apperror.New(
		apperror.CodeValidation,
		"organization is invalid",
		http.StatusBadRequest,
	)
	ErrUnauthenticated = apperror.New(
		apperror.CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)
)
