package wrangler

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// =============================================================================
// Routes
// =============================================================================

// Route is one routing declaration. A bare pattern string decodes into a
// Route with only Pattern set.
type Route struct {
	Pattern      string `json:"pattern"`
	ZoneID       string `json:"zone_id,omitempty"`
	ZoneName     string `json:"zone_name,omitempty"`
	CustomDomain bool   `json:"custom_domain,omitempty"`
}

// routeObject avoids recursing into Route.UnmarshalJSON.
type routeObject Route

// UnmarshalJSON accepts either a string or an object.
func (r *Route) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var pattern string
		if err := json.Unmarshal(trimmed, &pattern); err != nil {
			return fmt.Errorf("decode route pattern: %w", err)
		}
		*r = Route{Pattern: pattern}
		return nil
	}

	var obj routeObject
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("decode route: %w", err)
	}
	*r = Route(obj)
	return nil
}
