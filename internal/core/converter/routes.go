package converter

import (
	"github.com/artpar/workermeta/internal/core/metadata"
	"github.com/artpar/workermeta/internal/core/wrangler"
)

// =============================================================================
// Route Resolution
// =============================================================================

// ResolveRoutes returns every entry of cfg.Routes in order, followed by the
// legacy cfg.Route when set. Each route targets cfg.Name. Zone names and the
// custom domain flag are not part of the output; overlapping patterns are
// neither merged nor rejected.
func ResolveRoutes(cfg *wrangler.Config) []metadata.Route {
	entries := make([]wrangler.Route, 0, len(cfg.Routes)+1)
	entries = append(entries, cfg.Routes...)
	if cfg.Route != nil {
		entries = append(entries, *cfg.Route)
	}

	routes := make([]metadata.Route, 0, len(entries))
	for _, entry := range entries {
		routes = append(routes, metadata.Route{
			Pattern: entry.Pattern,
			ZoneID:  entry.ZoneID,
			Script:  cfg.Name,
		})
	}
	return routes
}
