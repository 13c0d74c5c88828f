package merge

import (
	"slices"

	"github.com/cruciblehq/uberjni/internal/platform"
)

// An artifact removed from an output group.
type Removal struct {
	Group    string
	Artifact Artifact
}

// Returns the per-variant artifact name for a platform,
// "<component>-<architecture string>".
func VariantArtifactName(component string, target platform.Target) string {
	return component + "-" + target.ArchitectureString()
}

// Returns the per-variant artifact names for all targets, in target order.
func VariantArtifactNames(component string, targets []platform.Target) []string {
	names := make([]string, 0, len(targets))
	for _, t := range targets {
		names = append(names, VariantArtifactName(component, t))
	}
	return names
}

// Removes artifacts with any of the given names from every group.
//
// Only publication membership changes. The files behind the artifacts are
// left alone since the per-variant archives may still feed the merge.
// Removing an absent name is a no-op, so filtering twice yields the same
// groups as filtering once.
func FilterArtifacts(groups []*ArtifactGroup, names []string) []Removal {
	var removed []Removal
	for _, g := range groups {
		if g == nil {
			continue
		}
		g.Artifacts = slices.DeleteFunc(g.Artifacts, func(a Artifact) bool {
			if !slices.Contains(names, a.Name) {
				return false
			}
			removed = append(removed, Removal{Group: g.Name, Artifact: a})
			return true
		})
	}
	return removed
}

// Reports the artifacts [FilterArtifacts] would remove, without removing them.
func matchingArtifacts(groups []*ArtifactGroup, names []string) []Removal {
	var matched []Removal
	for _, g := range groups {
		if g == nil {
			continue
		}
		for _, a := range g.Artifacts {
			if slices.Contains(names, a.Name) {
				matched = append(matched, Removal{Group: g.Name, Artifact: a})
			}
		}
	}
	return matched
}
