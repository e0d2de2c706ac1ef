package leaveerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave request not found",
		http.StatusNotFound,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeValidation,
		"end_date must be on or after start_date",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"leave_type must be an active leave type of your organization",
		http.StatusBadRequest,
	)
	ErrNoEmployeeProfile = apperror.New(
		apperror.CodeInvalidState,
		"An employee profile is required to request leave",
		http.StatusBadRequest,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"A leave request already exists in an overlapping period",
		http.StatusBadRequest,
	)
	ErrQuotaExceeded = apperror.New(
		apperror.CodeValidation,
		"The request exceeds the yearly allowance for this leave type",
		http.StatusBadRequest,
	)

	ErrNotSubordinate = apperror.New(
		apperror.CodeForbidden,
		"Managers can only process requests of their direct reports",
		http.StatusForbidden,
	)
	ErrSelfApproval = apperror.New(
		apperror.CodeForbidden,
		"You cannot process your own leave request",
		http.StatusForbidden,
	)
	ErrNotRequester = apperror.New(
		apperror.CodeForbidden,
		"Only the requester can cancel a leave request",
		http.StatusForbidden,
	)

	ErrAlreadyProcessed = apperror.Conflict("This request has already been processed")
	ErrCannotCancel     = apperror.Conflict("Only pending requests or approved leave that has not started can be cancelled")
)
