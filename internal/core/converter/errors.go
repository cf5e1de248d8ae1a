package converter

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrInvalidBinding is returned when a binding lacks a required field.
	ErrInvalidBinding = errors.New("invalid binding")

	// ErrInvalidRoute is returned when a route has no pattern.
	ErrInvalidRoute = errors.New("invalid route")

	// ErrInvalidMigration is returned when a migration step has no tag.
	ErrInvalidMigration = errors.New("invalid migration step")
)

// BindingError describes one validation failure.
type BindingError struct {
	Field   string // e.g., "kv_namespaces[0].binding"
	Message string
	Err     error
}

func (e *BindingError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *BindingError) Unwrap() error {
	return e.Err
}

// NewBindingError creates a new BindingError.
func NewBindingError(field, message string, err error) *BindingError {
	return &BindingError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
