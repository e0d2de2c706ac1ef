package membererrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrMemberNotFound = apperror.New(
		apperror.CodeNotFound,
		"Member not found",
		http.StatusNotFound,
	)

	ErrUserNotFound = apperror.New(
		apperror.CodeValidation,
		"No user with this email exists",
		http.StatusBadRequest,
	)

	ErrAlreadyMember = apperror.New(
		apperror.CodeConflict,
		"This user is already a member of the organization",
		http.StatusBadRequest,
	)

	ErrInvalidRole = apperror.New(
		apperror.CodeValidation,
		"role is invalid",
		http.StatusBadRequest,
	)

	ErrOwnerRequired = apperror.New(
		apperror.CodeForbidden,
		"Only an owner can grant or revoke the owner role",
		http.StatusForbidden,
	)

	ErrLastOwner = apperror.Conflict("The organization must keep at least one active owner")
)
