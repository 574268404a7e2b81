package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur while running the pipeline.
var (
	// ErrNotFound indicates that a required input file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// NotFoundError reports an input path that does not exist. It is fatal
// for the invocation that hit it.
type NotFoundError struct {
	// Kind names what was being loaded, e.g. "runs file" or "summary".
	Kind string

	// Path is the location that was looked up.
	Path string

	// Err is the underlying filesystem error, if any.
	Err error
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Path)
}

// Unwrap returns the underlying error, supporting Go 1.13+ error unwrapping.
func (e *NotFoundError) Unwrap() error { return e.Err }

// Is reports whether target is ErrNotFound so callers can match any
// NotFoundError with errors.Is.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError creates a new NotFoundError with the given details.
func NewNotFoundError(kind, path string, err error) *NotFoundError {
	return &NotFoundError{
		Kind: kind,
		Path: path,
		Err:  err,
	}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// Unwrap lets a ValidationError match ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error { return ErrInvalidConfiguration }

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
