package notificationerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrNotificationNotFound = apperror.New(
		apperror.CodeNotFound,
		"Notification not found",
		http.StatusNotFound,
	)
	ErrInvalidEvent = apperror.New(
		apperror.CodeInvalidInput,
		"Event has no recipient",
		http.StatusBadRequest,
	)
)
