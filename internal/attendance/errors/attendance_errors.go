package attendanceerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrAttendanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance record not found",
		http.StatusNotFound,
	)
	ErrNoEmployeeProfile = apperror.New(
		apperror.CodeInvalidState,
		"An employee profile is required to record attendance",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"employee must belong to your organization",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrAlreadyRecorded = apperror.New(
		apperror.CodeConflict,
		"An attendance record already exists for this employee and date",
		http.StatusBadRequest,
	)

	ErrAlreadyCheckedIn      = apperror.Conflict("Already checked in today")
	ErrNotCheckedIn          = apperror.Conflict("You must check in first")
	ErrAlreadyCheckedOut     = apperror.Conflict("Already checked out today")
	ErrCheckOutBeforeCheckIn = apperror.Conflict("Check-out time is earlier than check-in time")
)
