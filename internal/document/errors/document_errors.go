package documenterrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrDocumentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Document not found",
		http.StatusNotFound,
	)

	ErrInvalidEmployee = apperror.New(
		apperror.CodeInvalidInput,
		"employee must belong to the same organization",
		http.StatusBadRequest,
	)

	ErrInvalidMetadata = apperror.New(
		apperror.CodeValidation,
		"metadata must be a JSON object",
		http.StatusBadRequest,
	)
)
