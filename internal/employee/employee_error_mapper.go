package employee

import (
	"strings"

	employeeerrors "go-hrms/internal/employee/errors"
	"go-hrms/internal/shared/dberr"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if dberr.IsNotFound(err) {
		return employeeerrors.ErrEmployeeNotFound
	}

	if detail, ok := dberr.UniqueViolation(err); ok {
		switch {
		case strings.Contains(detail, "email"):
			return employeeerrors.ErrEmailTaken
		case strings.Contains(detail, "user_id"):
			return employeeerrors.ErrUserAlreadyLinked
		default:
			return employeeerrors.ErrEmployeeIDTaken
		}
	}

	return err
}
