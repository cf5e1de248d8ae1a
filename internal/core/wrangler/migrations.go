package wrangler

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// =============================================================================
// Migrations
// =============================================================================

// MigrationStep is one durable object class migration.
//
// A decoded step keeps the exact object it was read from and encodes as that
// object, so class lists and any keys this package does not know about reach
// the deployment unchanged. Tag is read from the object for diffing.
type MigrationStep struct {
	Tag string `json:"tag"`

	raw json.RawMessage
}

// Clone returns a copy that shares no memory with s.
func (s MigrationStep) Clone() MigrationStep {
	return MigrationStep{
		Tag: s.Tag,
		raw: cloneRaw(s.raw),
	}
}

// UnmarshalJSON reads the tag and keeps the whole object.
func (s *MigrationStep) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("decode migration step: expected an object")
	}

	var head struct {
		Tag string `json:"tag"`
	}
	if err := json.Unmarshal(trimmed, &head); err != nil {
		return fmt.Errorf("decode migration step: %w", err)
	}

	s.Tag = head.Tag
	s.raw = cloneRaw(trimmed)
	return nil
}

// MarshalJSON emits the original object, or just the tag for a step built
// in code.
func (s MigrationStep) MarshalJSON() ([]byte, error) {
	if s.raw != nil {
		return s.raw, nil
	}
	return json.Marshal(struct {
		Tag string `json:"tag"`
	}{s.Tag})
}

// =============================================================================
// Raw Values
// =============================================================================

// CloneRaw copies a raw JSON value. An empty or null value becomes nil so
// that omitempty drops it.
func CloneRaw(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return cloneRaw(trimmed)
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}
