package widgeterrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrEventNotFound = apperror.New(
		apperror.CodeNotFound,
		"Event not found",
		http.StatusNotFound,
	)

	ErrProjectNotFound = apperror.New(
		apperror.CodeNotFound,
		"Project not found",
		http.StatusNotFound,
	)

	ErrInvalidTimeRange = apperror.New(
		apperror.CodeValidation,
		"end_time must not be before start_time",
		http.StatusBadRequest,
	)

	ErrInvalidDate = apperror.New(
		apperror.CodeValidation,
		"due_date must use the YYYY-MM-DD format",
		http.StatusBadRequest,
	)
)
