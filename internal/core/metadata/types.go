// Package metadata defines the worker metadata document accepted by the
// deployment API. Field names and JSON keys are fixed by that API.
// This is part of the Functional Core - types only, no I/O.
package metadata

import (
	"encoding/json"

	"github.com/artpar/workermeta/internal/core/wrangler"
)

// =============================================================================
// Binding Types
// =============================================================================

// BindingType is the literal "type" tag of an output binding.
type BindingType string

const (
	BindingTypePlainText       BindingType = "plain_text"
	BindingTypeJSON            BindingType = "json"
	BindingTypeKVNamespace     BindingType = "kv_namespace"
	BindingTypeR2Bucket        BindingType = "r2_bucket"
	BindingTypeD1              BindingType = "d1"
	BindingTypeDurableObject   BindingType = "durable_object_namespace"
	BindingTypeService         BindingType = "service"
	BindingTypeAnalyticsEngine BindingType = "analytics_engine"
	BindingTypeQueue           BindingType = "queue"
	BindingTypeBrowser         BindingType = "browser"
	BindingTypeAI              BindingType = "ai"
	BindingTypeVectorize       BindingType = "vectorize"
	BindingTypeHyperdrive      BindingType = "hyperdrive"
	BindingTypeMTLSCertificate BindingType = "mtls_certificate"
	BindingTypeSendEmail       BindingType = "send_email"
)

// =============================================================================
// WorkerMetadata - Main Output Type
// =============================================================================

// WorkerMetadata is the metadata part of a worker upload.
// Absent sections are omitted from the encoded document.
type WorkerMetadata struct {
	Migrations         *Migrations     `json:"migrations,omitempty"`
	CompatibilityDate  string          `json:"compatibility_date,omitempty"`
	CompatibilityFlags []string        `json:"compatibility_flags,omitempty"`
	Bindings           []Binding       `json:"bindings,omitempty"`
	Observability      json.RawMessage `json:"observability,omitempty"`
	Placement          json.RawMessage `json:"placement,omitempty"`
	Logpush            *bool           `json:"logpush,omitempty"`
	UsageModel         string          `json:"usage_model,omitempty"`
	TailConsumers      json.RawMessage `json:"tail_consumers,omitempty"`
	MainModule         string          `json:"main_module,omitempty"`
	Assets             *Assets         `json:"assets,omitempty"`
}

// Migrations is the durable object migration section.
type Migrations struct {
	OldTag string                   `json:"old_tag,omitempty"`
	NewTag string                   `json:"new_tag"`
	Steps  []wrangler.MigrationStep `json:"steps"`
}

// Assets carries the asset serving configuration.
type Assets struct {
	Config *AssetsConfig `json:"config,omitempty"`
}

// AssetsConfig is the subset of the assets declaration the API consumes.
type AssetsConfig struct {
	HTMLHandling     string          `json:"html_handling,omitempty"`
	NotFoundHandling string          `json:"not_found_handling,omitempty"`
	RunWorkerFirst   json.RawMessage `json:"run_worker_first,omitempty"`
}

// =============================================================================
// Routes
// =============================================================================

// Route maps a URL pattern to a script.
type Route struct {
	Pattern string `json:"pattern"`
	ZoneID  string `json:"zone_id,omitempty"`
	Script  string `json:"script,omitempty"`
}
