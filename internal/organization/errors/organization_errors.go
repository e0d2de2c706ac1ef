package organizationerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrOrganizationNotFound = apperror.New(
		apperror.CodeNotFound,
		"Organization not found",
		http.StatusNotFound,
	)

	ErrNameTaken = apperror.New(
		apperror.CodeConflict,
		"An organization with this name already exists",
		http.StatusBadRequest,
	)

	ErrSlugTaken = apperror.New(
		apperror.CodeConflict,
		"An organization with this slug already exists",
		http.StatusBadRequest,
	)

	ErrInvalidSlug = apperror.New(
		apperror.CodeValidation,
		"slug must contain letters or digits",
		http.StatusBadRequest,
	)

	ErrInvalidPlan = apperror.New(
		apperror.CodeValidation,
		"plan is invalid",
		http.StatusBadRequest,
	)
)
