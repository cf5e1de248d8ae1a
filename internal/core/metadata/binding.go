package metadata

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// Binding
// =============================================================================

// Binding is one entry of the metadata bindings list. Only the fields that
// belong to its Type are set; the rest are omitted when encoded.
//
// A raw binding (see NewRawBinding) encodes as the exact object it was built
// from, ignoring every typed field.
type Binding struct {
	Name string      `json:"name"`
	Type BindingType `json:"type"`

	Text string `json:"text,omitempty"`
	JSON string `json:"json,omitempty"`

	NamespaceID string `json:"namespace_id,omitempty"`
	BucketName  string `json:"bucket_name,omitempty"`
	ID          string `json:"id,omitempty"`

	ClassName   string `json:"class_name,omitempty"`
	ScriptName  string `json:"script_name,omitempty"`
	Service     string `json:"service,omitempty"`
	Environment string `json:"environment,omitempty"`

	Dataset       string `json:"dataset,omitempty"`
	QueueName     string `json:"queue_name,omitempty"`
	IndexName     string `json:"index_name,omitempty"`
	CertificateID string `json:"certificate_id,omitempty"`

	DestinationAddress          string   `json:"destination_address,omitempty"`
	AllowedDestinationAddresses []string `json:"allowed_destination_addresses,omitempty"`

	raw json.RawMessage
}

// bindingFields avoids recursing into Binding.MarshalJSON.
type bindingFields Binding

// NewRawBinding wraps an arbitrary binding object. Name and Type are read
// from it for reporting; the object itself is encoded unchanged.
func NewRawBinding(raw json.RawMessage) Binding {
	var head struct {
		Name string      `json:"name"`
		Type BindingType `json:"type"`
	}
	// A raw binding is passed through even when it is not an object.
	_ = json.Unmarshal(raw, &head)

	return Binding{
		Name: head.Name,
		Type: head.Type,
		raw:  append(json.RawMessage(nil), raw...),
	}
}

// IsRaw reports whether the binding is an unvalidated passthrough object.
func (b Binding) IsRaw() bool {
	return b.raw != nil
}

// Raw returns the passthrough object, or nil for typed bindings.
func (b Binding) Raw() json.RawMessage {
	return b.raw
}

// MarshalJSON encodes raw bindings verbatim and typed bindings by field.
func (b Binding) MarshalJSON() ([]byte, error) {
	if b.raw != nil {
		return b.raw, nil
	}
	// An empty plain_text value is still a value.
	if b.Type == BindingTypePlainText && b.Text == "" {
		return json.Marshal(struct {
			Name string      `json:"name"`
			Type BindingType `json:"type"`
			Text string      `json:"text"`
		}{b.Name, b.Type, ""})
	}
	return json.Marshal(bindingFields(b))
}

// UnmarshalJSON decodes a typed binding. Objects whose type is not one of the
// known binding types are kept raw.
func (b *Binding) UnmarshalJSON(data []byte) error {
	var fields bindingFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode binding: %w", err)
	}
	if !fields.Type.Known() {
		*b = NewRawBinding(data)
		return nil
	}
	*b = Binding(fields)
	return nil
}

// Known reports whether t is one of the binding types the converter emits.
func (t BindingType) Known() bool {
	switch t {
	case BindingTypePlainText, BindingTypeJSON, BindingTypeKVNamespace,
		BindingTypeR2Bucket, BindingTypeD1, BindingTypeDurableObject,
		BindingTypeService, BindingTypeAnalyticsEngine, BindingTypeQueue,
		BindingTypeBrowser, BindingTypeAI, BindingTypeVectorize,
		BindingTypeHyperdrive, BindingTypeMTLSCertificate, BindingTypeSendEmail:
		return true
	}
	return false
}
