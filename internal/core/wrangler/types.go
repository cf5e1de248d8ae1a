package wrangler

import "encoding/json"

// =============================================================================
// Config - Main Input Type
// =============================================================================

// Config is a parsed worker configuration. Every section is optional.
type Config struct {
	Name               string   `json:"name,omitempty"`
	Main               string   `json:"main,omitempty"`
	CompatibilityDate  string   `json:"compatibility_date,omitempty"`
	CompatibilityFlags []string `json:"compatibility_flags,omitempty"`

	Routes []Route `json:"routes,omitempty"`
	Route  *Route  `json:"route,omitempty"`

	Vars Vars `json:"vars,omitempty"`

	KVNamespaces            []KVNamespace            `json:"kv_namespaces,omitempty"`
	R2Buckets               []R2Bucket               `json:"r2_buckets,omitempty"`
	D1Databases             []D1Database             `json:"d1_databases,omitempty"`
	DurableObjects          *DurableObjects          `json:"durable_objects,omitempty"`
	Services                []ServiceBinding         `json:"services,omitempty"`
	AnalyticsEngineDatasets []AnalyticsEngineDataset `json:"analytics_engine_datasets,omitempty"`
	Queues                  *Queues                  `json:"queues,omitempty"`
	Browser                 *BrowserBinding          `json:"browser,omitempty"`
	AI                      *AIBinding               `json:"ai,omitempty"`
	Vectorize               []VectorizeIndex         `json:"vectorize,omitempty"`
	Hyperdrive              []HyperdriveConfig       `json:"hyperdrive,omitempty"`
	MTLSCertificates        []MTLSCertificate        `json:"mtls_certificates,omitempty"`
	SendEmail               []EmailBinding           `json:"send_email,omitempty"`

	Assets     *Assets `json:"assets,omitempty"`
	Logpush    *bool   `json:"logpush,omitempty"`
	UsageModel string  `json:"usage_model,omitempty"`

	// Observability, Placement and TailConsumers are copied to the metadata
	// as written, so they are kept undecoded.
	Observability json.RawMessage `json:"observability,omitempty"`
	Placement     json.RawMessage `json:"placement,omitempty"`
	TailConsumers json.RawMessage `json:"tail_consumers,omitempty"`

	Migrations []MigrationStep `json:"migrations,omitempty"`
	Unsafe     *Unsafe         `json:"unsafe,omitempty"`
}

// =============================================================================
// Storage Bindings
// =============================================================================

// KVNamespace binds a key-value namespace.
type KVNamespace struct {
	Binding   string `json:"binding"`
	ID        string `json:"id,omitempty"`
	PreviewID string `json:"preview_id,omitempty"`
}

// R2Bucket binds an object storage bucket.
type R2Bucket struct {
	Binding           string `json:"binding"`
	BucketName        string `json:"bucket_name,omitempty"`
	PreviewBucketName string `json:"preview_bucket_name,omitempty"`
	Jurisdiction      string `json:"jurisdiction,omitempty"`
}

// D1Database binds a relational database.
type D1Database struct {
	Binding           string `json:"binding"`
	DatabaseID        string `json:"database_id,omitempty"`
	DatabaseName      string `json:"database_name,omitempty"`
	PreviewDatabaseID string `json:"preview_database_id,omitempty"`
}

// DurableObjects wraps the durable object binding list.
type DurableObjects struct {
	Bindings []DurableObjectBinding `json:"bindings,omitempty"`
}

// DurableObjectBinding binds a stateful actor class.
type DurableObjectBinding struct {
	Name        string `json:"name"`
	ClassName   string `json:"class_name"`
	ScriptName  string `json:"script_name,omitempty"`
	Environment string `json:"environment,omitempty"`
}

// =============================================================================
// Network Bindings
// =============================================================================

// ServiceBinding binds another worker.
type ServiceBinding struct {
	Binding     string `json:"binding"`
	Service     string `json:"service"`
	Environment string `json:"environment,omitempty"`
	Entrypoint  string `json:"entrypoint,omitempty"`
}

// AnalyticsEngineDataset binds an analytics dataset.
type AnalyticsEngineDataset struct {
	Binding string `json:"binding"`
	Dataset string `json:"dataset,omitempty"`
}

// Queues holds queue producers and consumers.
// Consumers are declared on the worker but are not bindings.
type Queues struct {
	Producers []QueueProducer `json:"producers,omitempty"`
	Consumers []QueueConsumer `json:"consumers,omitempty"`
}

// QueueProducer binds a queue for sending.
type QueueProducer struct {
	Binding       string `json:"binding"`
	Queue         string `json:"queue"`
	DeliveryDelay *int   `json:"delivery_delay,omitempty"`
}

// QueueConsumer subscribes the worker to a queue.
type QueueConsumer struct {
	Queue           string `json:"queue"`
	MaxBatchSize    *int   `json:"max_batch_size,omitempty"`
	MaxBatchTimeout *int   `json:"max_batch_timeout,omitempty"`
	MaxRetries      *int   `json:"max_retries,omitempty"`
	DeadLetterQueue string `json:"dead_letter_queue,omitempty"`
	MaxConcurrency  *int   `json:"max_concurrency,omitempty"`
}

// BrowserBinding binds the browser automation service.
type BrowserBinding struct {
	Binding string `json:"binding"`
}

// AIBinding binds the inference service.
type AIBinding struct {
	Binding string `json:"binding"`
	Staging bool   `json:"staging,omitempty"`
}

// VectorizeIndex binds a vector index.
type VectorizeIndex struct {
	Binding   string `json:"binding"`
	IndexName string `json:"index_name"`
}

// HyperdriveConfig binds a database proxy.
type HyperdriveConfig struct {
	Binding               string `json:"binding"`
	ID                    string `json:"id"`
	LocalConnectionString string `json:"localConnectionString,omitempty"`
}

// MTLSCertificate binds a client certificate.
type MTLSCertificate struct {
	Binding       string `json:"binding"`
	CertificateID string `json:"certificate_id"`
}

// EmailBinding binds the transactional email sender.
type EmailBinding struct {
	Name                        string   `json:"name"`
	DestinationAddress          string   `json:"destination_address,omitempty"`
	AllowedDestinationAddresses []string `json:"allowed_destination_addresses,omitempty"`
}

// =============================================================================
// Worker Settings
// =============================================================================

// Assets declares a static assets directory.
// Directory and Binding are consumed by packaging, not by metadata.
type Assets struct {
	Directory        string          `json:"directory,omitempty"`
	Binding          string          `json:"binding,omitempty"`
	HTMLHandling     string          `json:"html_handling,omitempty"`
	NotFoundHandling string          `json:"not_found_handling,omitempty"`
	RunWorkerFirst   json.RawMessage `json:"run_worker_first,omitempty"` // bool or []string
}

// =============================================================================
// Unsafe
// =============================================================================

// Unsafe holds raw bindings and metadata that are not validated.
type Unsafe struct {
	Bindings []json.RawMessage          `json:"bindings,omitempty"`
	Metadata map[string]json.RawMessage `json:"metadata,omitempty"`
}
