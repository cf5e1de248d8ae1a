// Package output writes conversion results to disk as JSON or YAML.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for format names other than json and yaml.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat resolves a format name. Empty means JSON; "yml" is accepted.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// DefaultFileName returns the file written when no path is given.
func DefaultFileName(format Format) string {
	if format == FormatYAML {
		return "metadata.yaml"
	}
	return "metadata.json"
}

// =============================================================================
// Writing
// =============================================================================

// Write encodes v in format and writes it to path, replacing any existing file.
func Write(path string, v any, format Format) error {
	var buf bytes.Buffer
	if err := Encode(&buf, v, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Encode writes v to w in format. JSON is indented by two spaces; YAML keeps
// the field order of the JSON encoding.
func Encode(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		return encodeYAML(w, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
}

// encodeYAML goes through JSON so custom marshalers and json tags decide the
// shape, then re-emits the tree in block style.
func encodeYAML(w io.Writer, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(doc, &node); err != nil {
		return fmt.Errorf("decode json as yaml: %w", err)
	}
	blockStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}
