package wrangler

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// =============================================================================
// Variable Values
// =============================================================================

// Value is a plain variable value. It is either a TextValue or a JSONValue.
type Value interface {
	isValue()
}

// TextValue is a variable declared as a string.
type TextValue string

// JSONValue is a variable declared as any non-string JSON value.
// It holds the compact JSON encoding of that value.
type JSONValue json.RawMessage

func (TextValue) isValue() {}
func (JSONValue) isValue() {}

// MarshalJSON returns the stored encoding.
func (v JSONValue) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return []byte(v), nil
}

// String returns the compact JSON text.
func (v JSONValue) String() string {
	if len(v) == 0 {
		return "null"
	}
	return string(v)
}

// NewJSONValue encodes v as a JSONValue.
func NewJSONValue(v any) (JSONValue, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode variable: %w", err)
	}
	return JSONValue(raw), nil
}

// ParseValue classifies a raw JSON value: strings become TextValue,
// everything else a compact JSONValue.
func ParseValue(raw json.RawMessage) (Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return JSONValue("null"), nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("decode string variable: %w", err)
		}
		return TextValue(s), nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, fmt.Errorf("decode json variable: %w", err)
	}
	return JSONValue(buf.Bytes()), nil
}

// =============================================================================
// Vars
// =============================================================================

// Vars maps variable names to values.
type Vars map[string]Value

// UnmarshalJSON decodes an object of variables, classifying each value.
func (v *Vars) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*v = nil
		return nil
	}

	vars := make(Vars, len(raw))
	for name, value := range raw {
		parsed, err := ParseValue(value)
		if err != nil {
			return fmt.Errorf("vars.%s: %w", name, err)
		}
		vars[name] = parsed
	}
	*v = vars
	return nil
}

// MarshalJSON encodes text values as strings and JSON values verbatim.
func (v Vars) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	out := make(map[string]json.RawMessage, len(v))
	for name, value := range v {
		switch val := value.(type) {
		case TextValue:
			encoded, err := json.Marshal(string(val))
			if err != nil {
				return nil, err
			}
			out[name] = encoded
		case JSONValue:
			out[name] = json.RawMessage(val.String())
		default:
			out[name] = json.RawMessage("null")
		}
	}
	return json.Marshal(out)
}
