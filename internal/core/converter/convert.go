package converter

import (
	"errors"
	"slices"

	"github.com/artpar/workermeta/internal/core/metadata"
	"github.com/artpar/workermeta/internal/core/wrangler"
)

// DefaultScriptName is used when the config has no name.
const DefaultScriptName = "worker"

// =============================================================================
// Result
// =============================================================================

// Result is the outcome of a conversion.
type Result struct {
	Metadata metadata.WorkerMetadata `json:"metadata"`
	Routes   []metadata.Route        `json:"routes"`

	// Migrations is the step list exactly as configured, before diffing.
	Migrations []wrangler.MigrationStep `json:"migrations,omitempty"`

	ScriptName string `json:"scriptName"`
	MainModule string `json:"mainModule,omitempty"`
}

// RouteCount returns the number of resolved routes.
func (r *Result) RouteCount() int {
	return len(r.Routes)
}

// BindingCount returns the number of metadata bindings.
func (r *Result) BindingCount() int {
	return len(r.Metadata.Bindings)
}

// IsModuleWorker reports whether the worker declares an entry module.
func (r *Result) IsModuleWorker() bool {
	return r.Metadata.MainModule != ""
}

// =============================================================================
// Convert
// =============================================================================

// ScriptName returns the worker name cfg deploys under.
func ScriptName(cfg *wrangler.Config) string {
	if cfg == nil || cfg.Name == "" {
		return DefaultScriptName
	}
	return cfg.Name
}

// Convert maps cfg onto worker metadata.
//
// env overrides cfg.Vars key by key. previousTag is the last migration tag
// applied to the deployed worker; empty means none. Convert never fails and
// never modifies cfg or env.
func Convert(cfg *wrangler.Config, env map[string]string, previousTag string) *Result {
	if cfg == nil {
		cfg = &wrangler.Config{}
	}

	md := metadata.WorkerMetadata{
		Migrations:         DiffMigrations(cfg.Migrations, previousTag),
		CompatibilityDate:  cfg.CompatibilityDate,
		CompatibilityFlags: slices.Clone(cfg.CompatibilityFlags),
		Bindings:           BuildBindings(cfg, env),
		Observability:      wrangler.CloneRaw(cfg.Observability),
		Placement:          wrangler.CloneRaw(cfg.Placement),
		Logpush:            clonePtr(cfg.Logpush),
		UsageModel:         cfg.UsageModel,
		TailConsumers:      wrangler.CloneRaw(cfg.TailConsumers),
		MainModule:         cfg.Main,
		Assets:             convertAssets(cfg.Assets),
	}

	scriptName := ScriptName(cfg)

	return &Result{
		Metadata:   md,
		Routes:     ResolveRoutes(cfg),
		Migrations: cloneSteps(cfg.Migrations),
		ScriptName: scriptName,
		MainModule: cfg.Main,
	}
}

// ConvertStrict validates cfg before converting it. All validation failures
// are joined into the returned error.
func ConvertStrict(cfg *wrangler.Config, env map[string]string, previousTag string) (*Result, error) {
	if errs := Validate(cfg); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return Convert(cfg, env, previousTag), nil
}

// convertAssets keeps the serving options; directory and binding belong to
// the asset upload, not the metadata.
func convertAssets(assets *wrangler.Assets) *metadata.Assets {
	if assets == nil {
		return nil
	}
	return &metadata.Assets{
		Config: &metadata.AssetsConfig{
			HTMLHandling:     assets.HTMLHandling,
			NotFoundHandling: assets.NotFoundHandling,
			RunWorkerFirst:   slices.Clone(assets.RunWorkerFirst),
		},
	}
}

// =============================================================================
// Copy Helpers
// =============================================================================

// clonePtr copies the value behind p so the result never aliases the input.
func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneSteps(steps []wrangler.MigrationStep) []wrangler.MigrationStep {
	if steps == nil {
		return nil
	}
	out := make([]wrangler.MigrationStep, len(steps))
	for i, step := range steps {
		out[i] = step.Clone()
	}
	return out
}
