package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/artpar/workermeta/internal/core/converter"
	"github.com/artpar/workermeta/internal/core/wrangler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleResult() *converter.Result {
	cfg := &wrangler.Config{
		Name:              "api",
		Main:              "src/index.ts",
		CompatibilityDate: "2024-09-23",
		Vars: wrangler.Vars{
			"DEBUG": wrangler.TextValue("true"),
			"LIMIT": wrangler.JSONValue("10"),
		},
		Routes: []wrangler.Route{{Pattern: "example.com/*", ZoneID: "z1"}},
	}
	return converter.Convert(cfg, nil, "")
}

// =============================================================================
// Format Tests
// =============================================================================

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"toml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultFileName(t *testing.T) {
	assert.Equal(t, "metadata.json", DefaultFileName(FormatJSON))
	assert.Equal(t, "metadata.yaml", DefaultFileName(FormatYAML))
}

// =============================================================================
// Encode Tests
// =============================================================================

func TestEncode_JSONIndented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, map[string]any{"a": map[string]int{"b": 1}}, FormatJSON))

	assert.Equal(t, "{\n  \"a\": {\n    \"b\": 1\n  }\n}\n", buf.String())
}

func TestEncode_JSONDoesNotEscapeHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, map[string]string{"pattern": "a.com/<x>&y"}, FormatJSON))

	assert.Contains(t, buf.String(), "a.com/<x>&y")
}

func TestEncode_YAMLKeepsFieldOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleResult(), FormatYAML))
	out := buf.String()

	metadataAt := strings.Index(out, "metadata:")
	routesAt := strings.Index(out, "routes:")
	scriptAt := strings.Index(out, "scriptName:")
	require.True(t, metadataAt >= 0 && routesAt >= 0 && scriptAt >= 0, out)
	assert.Less(t, metadataAt, routesAt)
	assert.Less(t, routesAt, scriptAt)

	// String values that look like other scalars stay strings
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	bindings := decoded["metadata"].(map[string]any)["bindings"].([]any)
	debug := bindings[0].(map[string]any)
	assert.Equal(t, "DEBUG", debug["name"])
	assert.Equal(t, "true", debug["text"])
}

func TestEncode_YAMLMatchesJSON(t *testing.T) {
	result := sampleResult()

	var jsonBuf, yamlBuf bytes.Buffer
	require.NoError(t, Encode(&jsonBuf, result, FormatJSON))
	require.NoError(t, Encode(&yamlBuf, result, FormatYAML))

	var fromJSON, fromYAML map[string]any
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &fromJSON))
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))

	assert.Equal(t, fromJSON["scriptName"], fromYAML["scriptName"])
	assert.Equal(t, fromJSON["mainModule"], fromYAML["mainModule"])
	assert.Len(t, fromYAML["routes"], 1)
}

func TestEncode_UnknownFormat(t *testing.T) {
	err := Encode(&bytes.Buffer{}, struct{}{}, Format("xml"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

// =============================================================================
// Write Tests
// =============================================================================

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	require.NoError(t, Write(path, sampleResult(), FormatJSON))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, "api", decoded["scriptName"])
	assert.Equal(t, "src/index.ts", decoded["mainModule"])
}

func TestWrite_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "metadata.json")

	err := Write(path, sampleResult(), FormatJSON)

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
