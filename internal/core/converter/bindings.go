package converter

import (
	"encoding/json"
	"slices"
	"sort"

	"github.com/artpar/workermeta/internal/core/metadata"
	"github.com/artpar/workermeta/internal/core/wrangler"
)

// =============================================================================
// Binding Table
// =============================================================================

// bindingSource collects the bindings of one resource kind. Path is the
// config field the kind is declared under, used in validation messages.
type bindingSource struct {
	Path      string
	Singleton bool
	Collect   func(cfg *wrangler.Config) []metadata.Binding
}

// bindingTable lists every resource kind in output order. Variables come
// before all of these and are handled by MergeVars since they also depend on
// the environment overrides.
var bindingTable = []bindingSource{
	{Path: "kv_namespaces", Collect: func(c *wrangler.Config) []metadata.Binding { return mapEach(c.KVNamespaces, kvBinding) }},
	{Path: "r2_buckets", Collect: func(c *wrangler.Config) []metadata.Binding { return mapEach(c.R2Buckets, r2Binding) }},
	{Path: "d1_databases", Collect: func(c *wrangler.Config) []metadata.Binding { return mapEach(c.D1Databases, d1Binding) }},
	{Path: "durable_objects.bindings", Collect: func(c *wrangler.Config) []metadata.Binding {
		return mapEach(durableObjects(c), durableObjectBinding)
	}},
	{Path: "services", Collect: func(c *wrangler.Config) []metadata.Binding { return mapEach(c.Services, serviceBinding) }},
	{Path: "analytics_engine_datasets", Collect: func(c *wrangler.Config) []metadata.Binding {
		return mapEach(c.AnalyticsEngineDatasets, analyticsBinding)
	}},
	{Path: "queues.producers", Collect: func(c *wrangler.Config) []metadata.Binding { return mapEach(queueProducers(c), queueBinding) }},
	{Path: "browser", Singleton: true, Collect: func(c *wrangler.Config) []metadata.Binding { return single(c.Browser, browserBinding) }},
	{Path: "ai", Singleton: true, Collect: func(c *wrangler.Config) []metadata.Binding { return single(c.AI, aiBinding) }},
	{Path: "vectorize", Collect: func(c *wrangler.Config) []metadata.Binding { return mapEach(c.Vectorize, vectorizeBinding) }},
	{Path: "hyperdrive", Collect: func(c *wrangler.Config) []metadata.Binding { return mapEach(c.Hyperdrive, hyperdriveBinding) }},
	{Path: "mtls_certificates", Collect: func(c *wrangler.Config) []metadata.Binding { return mapEach(c.MTLSCertificates, mtlsBinding) }},
	{Path: "send_email", Collect: func(c *wrangler.Config) []metadata.Binding { return mapEach(c.SendEmail, emailBinding) }},
	{Path: "unsafe.bindings", Collect: func(c *wrangler.Config) []metadata.Binding {
		return mapEach(unsafeBindings(c), metadata.NewRawBinding)
	}},
}

// BuildBindings returns the metadata bindings for cfg in fixed kind order,
// or nil when there are none.
func BuildBindings(cfg *wrangler.Config, env map[string]string) []metadata.Binding {
	bindings := varBindings(MergeVars(cfg.Vars, env))
	for _, src := range bindingTable {
		bindings = append(bindings, src.Collect(cfg)...)
	}
	if len(bindings) == 0 {
		return nil
	}
	return bindings
}

func mapEach[T any](items []T, fn func(T) metadata.Binding) []metadata.Binding {
	if len(items) == 0 {
		return nil
	}
	out := make([]metadata.Binding, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}

func single[T any](item *T, fn func(T) metadata.Binding) []metadata.Binding {
	if item == nil {
		return nil
	}
	return []metadata.Binding{fn(*item)}
}

// =============================================================================
// Variables
// =============================================================================

// MergeVars overlays env on vars. An override strictly replaces a configured
// variable of the same name and is always a TextValue. Neither input is
// modified.
func MergeVars(vars wrangler.Vars, env map[string]string) wrangler.Vars {
	merged := make(wrangler.Vars, len(vars)+len(env))
	for name, value := range vars {
		merged[name] = value
	}
	for name, value := range env {
		merged[name] = wrangler.TextValue(value)
	}
	return merged
}

// varBindings emits one binding per variable, sorted by name so the output
// never depends on map iteration order.
func varBindings(vars wrangler.Vars) []metadata.Binding {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]metadata.Binding, 0, len(names))
	for _, name := range names {
		out = append(out, varBinding(name, vars[name]))
	}
	return out
}

func varBinding(name string, value wrangler.Value) metadata.Binding {
	switch v := value.(type) {
	case wrangler.TextValue:
		return metadata.Binding{Name: name, Type: metadata.BindingTypePlainText, Text: string(v)}
	case wrangler.JSONValue:
		return metadata.Binding{Name: name, Type: metadata.BindingTypeJSON, JSON: v.String()}
	default:
		// A nil Value is an absent JSON value.
		return metadata.Binding{Name: name, Type: metadata.BindingTypeJSON, JSON: "null"}
	}
}

// =============================================================================
// Resource Mappers
// =============================================================================

// kvBinding drops preview_id; previews are not part of a deployment.
func kvBinding(kv wrangler.KVNamespace) metadata.Binding {
	return metadata.Binding{Name: kv.Binding, Type: metadata.BindingTypeKVNamespace, NamespaceID: kv.ID}
}

func r2Binding(r2 wrangler.R2Bucket) metadata.Binding {
	return metadata.Binding{Name: r2.Binding, Type: metadata.BindingTypeR2Bucket, BucketName: r2.BucketName}
}

func d1Binding(d1 wrangler.D1Database) metadata.Binding {
	return metadata.Binding{Name: d1.Binding, Type: metadata.BindingTypeD1, ID: d1.DatabaseID}
}

func durableObjectBinding(do wrangler.DurableObjectBinding) metadata.Binding {
	return metadata.Binding{
		Name:        do.Name,
		Type:        metadata.BindingTypeDurableObject,
		ClassName:   do.ClassName,
		ScriptName:  do.ScriptName,
		Environment: do.Environment,
	}
}

func serviceBinding(svc wrangler.ServiceBinding) metadata.Binding {
	return metadata.Binding{
		Name:        svc.Binding,
		Type:        metadata.BindingTypeService,
		Service:     svc.Service,
		Environment: svc.Environment,
	}
}

func analyticsBinding(ds wrangler.AnalyticsEngineDataset) metadata.Binding {
	return metadata.Binding{Name: ds.Binding, Type: metadata.BindingTypeAnalyticsEngine, Dataset: ds.Dataset}
}

func queueBinding(q wrangler.QueueProducer) metadata.Binding {
	return metadata.Binding{Name: q.Binding, Type: metadata.BindingTypeQueue, QueueName: q.Queue}
}

func browserBinding(b wrangler.BrowserBinding) metadata.Binding {
	return metadata.Binding{Name: b.Binding, Type: metadata.BindingTypeBrowser}
}

func aiBinding(ai wrangler.AIBinding) metadata.Binding {
	return metadata.Binding{Name: ai.Binding, Type: metadata.BindingTypeAI}
}

func vectorizeBinding(v wrangler.VectorizeIndex) metadata.Binding {
	return metadata.Binding{Name: v.Binding, Type: metadata.BindingTypeVectorize, IndexName: v.IndexName}
}

func hyperdriveBinding(h wrangler.HyperdriveConfig) metadata.Binding {
	return metadata.Binding{Name: h.Binding, Type: metadata.BindingTypeHyperdrive, ID: h.ID}
}

func mtlsBinding(m wrangler.MTLSCertificate) metadata.Binding {
	return metadata.Binding{Name: m.Binding, Type: metadata.BindingTypeMTLSCertificate, CertificateID: m.CertificateID}
}

func emailBinding(e wrangler.EmailBinding) metadata.Binding {
	return metadata.Binding{
		Name:                        e.Name,
		Type:                        metadata.BindingTypeSendEmail,
		DestinationAddress:          e.DestinationAddress,
		AllowedDestinationAddresses: slices.Clone(e.AllowedDestinationAddresses),
	}
}

// =============================================================================
// Nested Sections
// =============================================================================

func durableObjects(cfg *wrangler.Config) []wrangler.DurableObjectBinding {
	if cfg.DurableObjects == nil {
		return nil
	}
	return cfg.DurableObjects.Bindings
}

func queueProducers(cfg *wrangler.Config) []wrangler.QueueProducer {
	if cfg.Queues == nil {
		return nil
	}
	return cfg.Queues.Producers
}

func unsafeBindings(cfg *wrangler.Config) []json.RawMessage {
	if cfg.Unsafe == nil {
		return nil
	}
	return cfg.Unsafe.Bindings
}
