package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the request is valid but clashes with the current state,
// e.g. an overlapping period or an entry that is no longer a draft.
var ErrConflict = errors.New("state conflict")

// ErrInternal indicates an infrastructure failure the caller cannot fix.
var ErrInternal = errors.New("internal error")

// AppError attaches a sentinel code and a caller-facing message to an underlying error.
type AppError struct {
	Code    error
	Message string
	Err     error
}

// NewAppError creates an AppError. code should be one of the sentinels above.
func NewAppError(code error, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Is makes errors.Is match the sentinel code.
func (e *AppError) Is(target error) bool {
	return e.Code != nil && target == e.Code
}

func (e *AppError) Unwrap() error { return e.Err }
