package api

import (
	"encoding/json"

	"github.com/artpar/workermeta/internal/core/history"
)

// =============================================================================
// Request Types
// =============================================================================

// ConvertRequest is the request body for a conversion.
//
// Config is either a config object or a string holding a config document in
// Format (toml, json or jsonc). PreviousTag, when absent, defaults to the
// last tag recorded for the script.
type ConvertRequest struct {
	Config      json.RawMessage   `json:"config"`
	Format      string            `json:"format,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
	PreviousTag *string           `json:"previous_tag,omitempty"`
}

// =============================================================================
// Response Types
// =============================================================================

// ConversionListResponse is the response for the conversion history.
type ConversionListResponse struct {
	Conversions []history.Conversion `json:"conversions"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

// MigrationTagResponse is the response for a script's last migration tag.
type MigrationTagResponse struct {
	ScriptName   string `json:"script_name"`
	MigrationTag string `json:"migration_tag"`
}

// ErrorResponse is the error response format.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	History bool   `json:"history"`
}
