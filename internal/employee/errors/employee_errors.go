package employeeerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmailTaken = apperror.New(
		apperror.CodeConflict,
		"Employee with the same email already exists",
		http.StatusBadRequest,
	)
	ErrEmployeeIDTaken = apperror.New(
		apperror.CodeConflict,
		"Employee ID already exists in this organization",
		http.StatusBadRequest,
	)
	ErrUserAlreadyLinked = apperror.New(
		apperror.CodeConflict,
		"This user already has an employee profile",
		http.StatusBadRequest,
	)
	ErrInvalidDepartment = apperror.New(
		apperror.CodeInvalidInput,
		"department must belong to the same organization",
		http.StatusBadRequest,
	)
	ErrInvalidManager = apperror.New(
		apperror.CodeInvalidInput,
		"manager must be an employee of the same organization",
		http.StatusBadRequest,
	)
	ErrManagerCycle = apperror.New(
		apperror.CodeValidation,
		"An employee cannot be their own manager, directly or indirectly",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrOrganizationNotFound = apperror.New(
		apperror.CodeNotFound,
		"Organization not found",
		http.StatusNotFound,
	)

	ErrCapacityReached = apperror.Conflict("The organization has reached its maximum number of employees")
)
