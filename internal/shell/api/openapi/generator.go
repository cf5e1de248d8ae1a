// Package openapi provides reflective OpenAPI 3.0 specification generation
// for the conversion API.
package openapi

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

// =============================================================================
// Generator
// =============================================================================

// Generator produces OpenAPI 3.0 specifications by reflecting on the request
// and response types of registered operations.
type Generator struct {
	title       string
	version     string
	description string
	servers     []string
	operations  []OperationInfo
	mu          sync.RWMutex
	cachedSpec  *openapi3.T
}

// OperationInfo describes one HTTP operation for spec generation.
type OperationInfo struct {
	Method      string // HTTP method (e.g., http.MethodPost)
	Path        string // Route pattern with {param} placeholders
	OperationID string
	Summary     string
	Tag         string
	Request     any            // Request body model, nil for none
	Response    any            // Success response model
	Status      int            // Success status, defaults to 200
	Query       []QueryParam   // Query string parameters
	Errors      map[int]string // Error statuses and their descriptions
}

// QueryParam describes a query string parameter.
type QueryParam struct {
	Name        string
	Type        string // OpenAPI type: string, integer, boolean
	Description string
}

// Option configures the generator.
type Option func(*Generator)

// WithTitle sets the API title.
func WithTitle(title string) Option {
	return func(g *Generator) {
		g.title = title
	}
}

// WithVersion sets the API version.
func WithVersion(version string) Option {
	return func(g *Generator) {
		g.version = version
	}
}

// WithDescription sets the API description.
func WithDescription(description string) Option {
	return func(g *Generator) {
		g.description = description
	}
}

// WithServer adds a server URL.
func WithServer(url string) Option {
	return func(g *Generator) {
		g.servers = append(g.servers, url)
	}
}

// NewGenerator creates a new OpenAPI generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		title:       "Workermeta API",
		version:     "1.0.0",
		description: "Converts worker configuration into deployment metadata",
		operations:  make([]OperationInfo, 0),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// RegisterOperation adds an operation to the generator for spec generation.
func (g *Generator) RegisterOperation(info OperationInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.operations = append(g.operations, info)
	g.cachedSpec = nil // Invalidate cache
}

// Generate produces the complete OpenAPI 3.0 specification.
func (g *Generator) Generate() *openapi3.T {
	g.mu.RLock()
	if g.cachedSpec != nil {
		spec := g.cachedSpec
		g.mu.RUnlock()
		return spec
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	// Double-check after acquiring write lock
	if g.cachedSpec != nil {
		return g.cachedSpec
	}

	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       g.title,
			Version:     g.version,
			Description: g.description,
		},
		Servers: make(openapi3.Servers, 0, len(g.servers)),
		Paths:   &openapi3.Paths{},
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas),
		},
	}

	for _, url := range g.servers {
		spec.Servers = append(spec.Servers, &openapi3.Server{URL: url})
	}

	g.addCommonSchemas(spec)

	for _, op := range g.operations {
		g.addOperationToSpec(spec, op)
	}

	g.cachedSpec = spec
	return spec
}

// Handler returns an HTTP handler that serves the OpenAPI specification.
func (g *Generator) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec := g.Generate()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		if err := json.NewEncoder(w).Encode(spec); err != nil {
			http.Error(w, "Failed to encode OpenAPI spec", http.StatusInternalServerError)
		}
	}
}

// =============================================================================
// Schema Generation
// =============================================================================

// addCommonSchemas adds the shared error schema to the spec.
func (g *Generator) addCommonSchemas(spec *openapi3.T) {
	spec.Components.Schemas["Error"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
				},
				"code": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
				},
				"details": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:  &openapi3.Types{"array"},
						Items: &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
					},
				},
			},
			Required: []string{"error", "code"},
		},
	}
}

// addOperationToSpec adds the path item, operation and component schemas
// for one registered operation.
func (g *Generator) addOperationToSpec(spec *openapi3.T, info OperationInfo) {
	item := spec.Paths.Value(info.Path)
	if item == nil {
		item = &openapi3.PathItem{}
		spec.Paths.Set(info.Path, item)
	}

	op := &openapi3.Operation{
		OperationID: info.OperationID,
		Summary:     info.Summary,
		Responses:   &openapi3.Responses{},
	}
	if info.Tag != "" {
		op.Tags = []string{info.Tag}
	}

	for _, name := range pathParams(info.Path) {
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{
			Value: openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema()),
		})
	}
	for _, q := range info.Query {
		param := openapi3.NewQueryParameter(q.Name).WithSchema(&openapi3.Schema{Type: &openapi3.Types{q.Type}})
		param.Description = q.Description
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: param})
	}

	if info.Request != nil {
		ref := g.componentRef(spec, info.Request)
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref),
		}
	}

	status := info.Status
	if status == 0 {
		status = http.StatusOK
	}
	success := openapi3.NewResponse().WithDescription(http.StatusText(status))
	if info.Response != nil {
		success = success.WithJSONSchemaRef(g.componentRef(spec, info.Response))
	}
	op.Responses.Set(strconv.Itoa(status), &openapi3.ResponseRef{Value: success})

	for code, desc := range info.Errors {
		resp := openapi3.NewResponse().
			WithDescription(desc).
			WithJSONSchemaRef(&openapi3.SchemaRef{Ref: "#/components/schemas/Error"})
		op.Responses.Set(strconv.Itoa(code), &openapi3.ResponseRef{Value: resp})
	}

	item.SetOperation(info.Method, op)
}

// componentRef registers the schema of model under its type name and returns
// a reference to it. Unnamed types are inlined.
func (g *Generator) componentRef(spec *openapi3.T, model any) *openapi3.SchemaRef {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() == reflect.Slice {
		return &openapi3.SchemaRef{
			Value: &openapi3.Schema{
				Type:  &openapi3.Types{"array"},
				Items: g.componentRef(spec, reflect.New(t.Elem()).Interface()),
			},
		}
	}

	name := t.Name()
	if name == "" || t.Kind() != reflect.Struct {
		return g.goTypeToSchema(t)
	}
	if _, ok := spec.Components.Schemas[name]; !ok {
		spec.Components.Schemas[name] = g.extractSchema(model)
	}
	return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name}
}

// extractSchema extracts an OpenAPI schema from a Go struct.
func (g *Generator) extractSchema(model any) *openapi3.SchemaRef {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	schema := &openapi3.Schema{
		Type:       &openapi3.Types{"object"},
		Properties: make(openapi3.Schemas),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		// Get JSON tag
		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		// Parse JSON tag for name
		name := field.Name
		omitempty := false
		if jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					omitempty = true
				}
			}
		}

		// Convert Go type to OpenAPI type
		propSchema := g.goTypeToSchema(field.Type)
		if propSchema != nil {
			schema.Properties[name] = propSchema
			if !omitempty && field.Type.Kind() != reflect.Ptr {
				schema.Required = append(schema.Required, name)
			}
		}
	}

	return &openapi3.SchemaRef{Value: schema}
}

var (
	timeType       = reflect.TypeOf(time.Time{})
	rawMessageType = reflect.TypeOf(json.RawMessage(nil))
)

// goTypeToSchema converts a Go type to an OpenAPI schema.
func (g *Generator) goTypeToSchema(t reflect.Type) *openapi3.SchemaRef {
	// Raw JSON is any value
	if t == rawMessageType {
		return &openapi3.SchemaRef{Value: &openapi3.Schema{}}
	}

	switch t.Kind() {
	case reflect.String:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}}

	case reflect.Int64:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"}}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}}}

	case reflect.Float32:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"number"}, Format: "float"}}

	case reflect.Float64:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"number"}, Format: "double"}}

	case reflect.Bool:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}}

	case reflect.Slice, reflect.Array:
		elemSchema := g.goTypeToSchema(t.Elem())
		return &openapi3.SchemaRef{
			Value: &openapi3.Schema{
				Type:  &openapi3.Types{"array"},
				Items: elemSchema,
			},
		}

	case reflect.Map:
		valueSchema := g.goTypeToSchema(t.Elem())
		return &openapi3.SchemaRef{
			Value: &openapi3.Schema{
				Type:                 &openapi3.Types{"object"},
				AdditionalProperties: openapi3.AdditionalProperties{Schema: valueSchema},
			},
		}

	case reflect.Ptr:
		schema := g.goTypeToSchema(t.Elem())
		if schema != nil && schema.Value != nil {
			schema.Value.Nullable = true
		}
		return schema

	case reflect.Interface:
		// Sum types encode as any JSON value
		return &openapi3.SchemaRef{Value: &openapi3.Schema{}}

	case reflect.Struct:
		if t == timeType {
			return &openapi3.SchemaRef{
				Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"},
			}
		}
		// For other structs, extract recursively
		return g.extractSchema(reflect.New(t).Interface())

	default:
		// Unknown type, return generic object
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}}
	}
}

// =============================================================================
// Helpers
// =============================================================================

// pathParams returns the {param} names in a route pattern, in order.
func pathParams(path string) []string {
	var params []string
	for _, segment := range strings.Split(path, "/") {
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			params = append(params, segment[1:len(segment)-1])
		}
	}
	return params
}
