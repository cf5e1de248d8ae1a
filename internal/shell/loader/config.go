package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/artpar/workermeta/internal/core/wrangler"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
)

// ConfigCandidates are the config file names looked up, in priority order.
var ConfigCandidates = []string{"wrangler.toml", "wrangler.json", "wrangler.jsonc"}

// =============================================================================
// Discovery
// =============================================================================

// FindConfig returns the path of the first config candidate present in dir.
func FindConfig(dir string) (string, error) {
	for _, name := range ConfigCandidates {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", NewLoadError(path, err.Error(), err)
		}
	}
	return "", NewLoadError(dir, ErrConfigNotFound.Error(), ErrConfigNotFound)
}

// =============================================================================
// Parsing
// =============================================================================

// ParseConfig reads and decodes the config file at path. The format is chosen
// by extension: .toml, .json or .jsonc.
func ParseConfig(path string) (*wrangler.Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewLoadError(path, "failed to read config file", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	cfg, err := DecodeConfig(content, ext)
	if err != nil {
		var lErr *LoadError
		if errors.As(err, &lErr) && lErr.Path == "" {
			lErr.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// DecodeConfig decodes config content in the format named by ext (".toml",
// ".json" or ".jsonc"). Every format is normalised to JSON first so all
// formats share the same decoding rules. TOML variables are the exception:
// they are classified from their TOML values, so a datetime stays a JSON
// value instead of turning into text.
func DecodeConfig(content []byte, ext string) (*wrangler.Config, error) {
	switch ext {
	case ".toml":
		return decodeTOML(content)
	case ".json":
		return decodeJSON(content)
	case ".jsonc":
		return decodeJSON(jsonc.ToJSON(content))
	default:
		return nil, NewLoadError("", fmt.Sprintf("%s %q", ErrUnsupportedFormat.Error(), ext), ErrUnsupportedFormat)
	}
}

func decodeJSON(doc []byte) (*wrangler.Config, error) {
	var cfg wrangler.Config
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return nil, NewLoadError("", err.Error(), ErrParse)
	}
	return &cfg, nil
}

// =============================================================================
// TOML
// =============================================================================

// decodeTOML decodes a TOML document into generic values, re-encodes all but
// the variables as JSON and classifies the variables directly.
func decodeTOML(content []byte) (*wrangler.Config, error) {
	var tree map[string]any
	if err := toml.Unmarshal(content, &tree); err != nil {
		var decErr *toml.DecodeError
		if errors.As(err, &decErr) {
			row, col := decErr.Position()
			return nil, NewLoadError("", fmt.Sprintf("line %d, column %d: %s", row, col, decErr.Error()), ErrParse)
		}
		return nil, NewLoadError("", err.Error(), ErrParse)
	}

	vars, isTable := tree["vars"].(map[string]any)
	if isTable {
		delete(tree, "vars")
	}

	doc, err := json.Marshal(finiteValues(tree))
	if err != nil {
		return nil, NewLoadError("", err.Error(), ErrParse)
	}
	cfg, err := decodeJSON(doc)
	if err != nil {
		return nil, err
	}

	if isTable {
		cfg.Vars, err = tomlVars(vars)
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// tomlVars keeps strings as text and encodes every other TOML value,
// datetimes included, as JSON.
func tomlVars(raw map[string]any) (wrangler.Vars, error) {
	vars := make(wrangler.Vars, len(raw))
	for name, value := range finiteValues(raw).(map[string]any) {
		if s, ok := value.(string); ok {
			vars[name] = wrangler.TextValue(s)
			continue
		}
		jv, err := wrangler.NewJSONValue(value)
		if err != nil {
			return nil, NewLoadError("", fmt.Sprintf("vars.%s: %s", name, err.Error()), ErrParse)
		}
		vars[name] = jv
	}
	return vars, nil
}

// finiteValues replaces nan and inf, which JSON cannot carry, with null.
func finiteValues(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = finiteValues(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = finiteValues(item)
		}
		return val
	case []map[string]any:
		for _, item := range val {
			finiteValues(item)
		}
		return val
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	default:
		return v
	}
}
