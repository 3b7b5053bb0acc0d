package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrRequestNotFound  = errors.New("attendance request not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrFacultyNotFound  = errors.New("faculty not found")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrInvalidFormat      = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")

	// Workflow errors
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Violation describes a single broken invariant on a submitted candidate.
type Violation struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationError carries every violation found on a candidate so callers
// can surface all problems at once instead of the first one hit.
type ValidationError struct {
	Violations []Violation
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrValidationFailed.Error()
	}
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field != "" {
			msgs = append(msgs, v.Field+": "+v.Message)
		} else {
			msgs = append(msgs, v.Message)
		}
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is(err, ErrValidationFailed) match
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// Add records a violation and returns the receiver for chaining
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Violations = append(e.Violations, Violation{Field: field, Message: message})
	return e
}

// Addf records a violation with a formatted message
func (e *ValidationError) Addf(field, format string, args ...interface{}) *ValidationError {
	return e.Add(field, fmt.Sprintf(format, args...))
}

// HasViolations reports whether any violation was recorded
func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}

// ErrOrNil returns the error when violations were collected, nil otherwise
func (e *ValidationError) ErrOrNil() error {
	if e.HasViolations() {
		return e
	}
	return nil
}

// NewValidationError creates an empty violation collector
func NewValidationError() *ValidationError {
	return &ValidationError{}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with an underlying sentinel
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// NewForbiddenError creates a permission-denied error with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewInvalidTransitionError creates an invalid-transition error describing
// the rejected move.
func NewInvalidTransitionError(from, action string) error {
	return &CustomError{
		Err:     ErrInvalidTransition,
		Message: fmt.Sprintf("cannot %s a request in status %s", action, from),
	}
}
