package domain

import (
	"errors"
	"fmt"
)

// Domain error types for consistent error handling across the application.

var (
	// ErrNotFound is returned when a well-formed identifier matches no expense.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStore is returned when the record store fails for reasons unrelated to the input.
	ErrStore = errors.New("store failure")
)

// DomainError wraps a base error with additional context.
type DomainError struct {
	// Base is the underlying error type (e.g., ErrNotFound)
	Base error

	// Message provides human-readable context
	Message string

	// Field indicates which field caused the error (for validation errors)
	Field string

	// Cause is the lower-level error, if any. It is never shown to API callers.
	Cause error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := e.Base.Error()
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field: %s)", msg, e.Field)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the base and cause errors for errors.Is/As support.
func (e *DomainError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Base, e.Cause}
	}
	return []error{e.Base}
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(resource string) *DomainError {
	return &DomainError{
		Base:    ErrNotFound,
		Message: resource,
	}
}

// NewValidationError creates a validation error for a specific field.
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Base:    ErrInvalidInput,
		Message: message,
		Field:   field,
	}
}

// NewStoreError records a failed store operation. op names the operation
// (e.g. "list expenses") and cause is the driver error.
func NewStoreError(op string, cause error) *DomainError {
	return &DomainError{
		Base:    ErrStore,
		Message: op,
		Cause:   cause,
	}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsStoreError checks if an error is a store failure.
func IsStoreError(err error) bool {
	return errors.Is(err, ErrStore)
}

// IsClassified reports whether err already carries one of the domain bases.
func IsClassified(err error) bool {
	return IsNotFound(err) || IsValidationError(err) || IsStoreError(err)
}
