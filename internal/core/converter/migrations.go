package converter

import (
	"github.com/artpar/workermeta/internal/core/metadata"
	"github.com/artpar/workermeta/internal/core/wrangler"
)

// =============================================================================
// Migration Diff
// =============================================================================

// DiffMigrations builds the migrations section for a deployment.
//
// Behavior:
//   - no steps: nil, the section is omitted entirely
//   - new_tag: the tag of the last step in input order (steps are not sorted)
//   - previousTag empty: every step is applied
//   - previousTag set: only steps whose tag is greater than previousTag
//     under plain string comparison, so "10" sorts before "2"
//
// Example:
//
//	DiffMigrations([]wrangler.MigrationStep{{Tag: "v1"}, {Tag: "v2"}}, "v1")
//	// Returns: &Migrations{OldTag: "v1", NewTag: "v2", Steps: [{Tag: "v2"}]}
func DiffMigrations(steps []wrangler.MigrationStep, previousTag string) *metadata.Migrations {
	if len(steps) == 0 {
		return nil
	}

	pending := make([]wrangler.MigrationStep, 0, len(steps))
	for _, step := range steps {
		if previousTag == "" || step.Tag > previousTag {
			pending = append(pending, step.Clone())
		}
	}

	return &metadata.Migrations{
		OldTag: previousTag,
		NewTag: steps[len(steps)-1].Tag,
		Steps:  pending,
	}
}
