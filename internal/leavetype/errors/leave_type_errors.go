package leavetypeerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrLeaveTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave type not found",
		http.StatusNotFound,
	)

	ErrCodeTaken = apperror.New(
		apperror.CodeConflict,
		"A leave type with this code already exists in the organization",
		http.StatusBadRequest,
	)

	ErrLeaveTypeInUse = apperror.Conflict("Leave type is referenced by leave requests")
)
