package store

import (
	"context"

	"github.com/artpar/workermeta/internal/core/history"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for conversion history.
type Store interface {
	// RecordConversion saves a conversion.
	RecordConversion(ctx context.Context, c *history.Conversion) error

	// GetConversion returns one conversion by ID.
	GetConversion(ctx context.Context, id string) (*history.Conversion, error)

	// ListConversions returns conversions newest first. An empty script lists
	// every script.
	ListConversions(ctx context.Context, script string, opts ListOptions) ([]history.Conversion, error)

	// LatestMigrationTag returns the most recent non-empty new_tag recorded
	// for script, or ErrNotFound.
	LatestMigrationTag(ctx context.Context, script string) (string, error)

	// Close releases the database connection.
	Close() error
}

// =============================================================================
// List Options
// =============================================================================

// ListOptions contains pagination options.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns default list options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:  100,
		Offset: 0,
	}
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 100
	}
	if o.Limit > 1000 {
		o.Limit = 1000
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
