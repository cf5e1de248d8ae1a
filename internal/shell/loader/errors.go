// Package loader reads worker configuration and environment override files
// from a project directory.
package loader

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrConfigNotFound is returned when no recognised config file exists.
	ErrConfigNotFound = errors.New("no wrangler config file found (wrangler.toml, wrangler.json, or wrangler.jsonc)")

	// ErrUnsupportedFormat is returned for config files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported config file format")

	// ErrParse is returned when a config file has invalid syntax.
	ErrParse = errors.New("config parse error")

	// ErrEnvFile is returned when an environment file cannot be read.
	ErrEnvFile = errors.New("environment file error")
)

// LoadError wraps errors with the file that caused them.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a new LoadError.
func NewLoadError(path, message string, err error) *LoadError {
	return &LoadError{
		Path:    path,
		Message: message,
		Err:     err,
	}
}
