package departmenterrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrDepartmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Department not found",
		http.StatusNotFound,
	)

	ErrNameTaken = apperror.New(
		apperror.CodeConflict,
		"A department with this name already exists in the organization",
		http.StatusBadRequest,
	)

	ErrInvalidParent = apperror.New(
		apperror.CodeInvalidInput,
		"parent must be a department of the same organization",
		http.StatusBadRequest,
	)

	ErrInvalidManager = apperror.New(
		apperror.CodeInvalidInput,
		"manager must be an employee of the same organization",
		http.StatusBadRequest,
	)

	ErrCycle = apperror.New(
		apperror.CodeValidation,
		"A department cannot be its own ancestor",
		http.StatusBadRequest,
	)
)
