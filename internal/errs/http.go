package errs

import (
	"errors"
	"net/http"
)

// Classify maps an error onto the HTTP status, machine code and client-safe
// message used by every responder. Internal details of persistence failures
// never reach the message.
func Classify(err error) (status int, code, message string) {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		connErr       *ConnectionError
		constraintErr *ConstraintError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "invalid_input", validationErr.Message
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, "not_found", notFoundErr.Message
	case errors.As(err, &connErr):
		return http.StatusInternalServerError, "database_unavailable", "internal error"
	case errors.As(err, &constraintErr):
		return http.StatusInternalServerError, "constraint_violation", "internal error"
	default:
		return http.StatusInternalServerError, "internal_error", "internal error"
	}
}
