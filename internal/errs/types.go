// Package errs defines the error taxonomy shared by the persistence, service
// and HTTP layers.
package errs

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	ErrorMessage
	Field string
}

// NotFoundError reports that no row matches the requested id.
type NotFoundError struct {
	ErrorMessage
}

// ConnectionError reports that the database could not be reached.
type ConnectionError struct {
	ErrorMessage
	Op  string
	Err error
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ConstraintError reports a storage-level constraint violation.
type ConstraintError struct {
	ErrorMessage
	Op         string
	Constraint string
	Err        error
}

func (e *ConstraintError) Unwrap() error { return e.Err }

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
		Field:        field,
	}
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewConnectionError(op string, err error) *ConnectionError {
	return &ConnectionError{
		ErrorMessage: ErrorMessage{Message: op + ": database unreachable"},
		Op:           op,
		Err:          err,
	}
}

func NewConstraintError(op, constraint string, err error) *ConstraintError {
	return &ConstraintError{
		ErrorMessage: ErrorMessage{Message: op + ": constraint violation"},
		Op:           op,
		Constraint:   constraint,
		Err:          err,
	}
}
