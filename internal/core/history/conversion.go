// Package history defines the record kept for each conversion so later runs
// can default their migration tag to the last one applied.
package history

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/artpar/workermeta/internal/core/converter"
	"github.com/google/uuid"
)

// ErrNilResult is returned when a conversion record is built without a result.
var ErrNilResult = errors.New("conversion result is required")

// Conversion is one recorded conversion.
type Conversion struct {
	ID           string          `json:"id"`
	ScriptName   string          `json:"script_name"`
	OldTag       string          `json:"old_tag,omitempty"`
	NewTag       string          `json:"new_tag,omitempty"`
	RouteCount   int             `json:"route_count"`
	BindingCount int             `json:"binding_count"`
	Result       json.RawMessage `json:"result"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewConversion builds a record for result. previousTag is the tag the
// conversion was diffed against.
func NewConversion(result *converter.Result, previousTag string) (*Conversion, error) {
	if result == nil {
		return nil, ErrNilResult
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	c := &Conversion{
		ID:           uuid.New().String(),
		ScriptName:   result.ScriptName,
		OldTag:       previousTag,
		RouteCount:   result.RouteCount(),
		BindingCount: result.BindingCount(),
		Result:       encoded,
		CreatedAt:    time.Now().UTC(),
	}
	if m := result.Metadata.Migrations; m != nil {
		c.NewTag = m.NewTag
	}
	return c, nil
}

// AdvancesTag reports whether the conversion moved the script to a new tag.
func (c *Conversion) AdvancesTag() bool {
	return c.NewTag != "" && c.NewTag != c.OldTag
}
