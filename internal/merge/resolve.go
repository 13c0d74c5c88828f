package merge

import (
	"fmt"

	"github.com/containerd/errdefs"
	"github.com/cruciblehq/uberjni/internal/platform"
)

// A target platform paired with the only variant built for it.
type Resolved struct {
	Target  platform.Target
	Variant Variant
}

// Resolves each target platform to its variant.
//
// Results follow the order of targets. Every target must match exactly one
// variant. Zero matches fail with [ErrMissingVariant] and more than one with
// [ErrAmbiguousVariant]. A platform declared twice in targets is ambiguous
// too. The first failing target aborts resolution. Variants whose platform
// is not declared are ignored.
func ResolveVariants(targets []platform.Target, variants []Variant) ([]Resolved, error) {
	resolved := make([]Resolved, 0, len(targets))

	for i, target := range targets {
		for _, prev := range targets[:i] {
			if prev.Equal(target) {
				return nil, fmt.Errorf("%w: %s declared twice: %w", ErrAmbiguousVariant, target, errdefs.ErrConflict)
			}
		}

		var matches []Variant
		for _, v := range variants {
			if v.Platform.Equal(target) {
				matches = append(matches, v)
			}
		}

		switch len(matches) {
		case 0:
			return nil, fmt.Errorf("%w: %s: %w", ErrMissingVariant, target, errdefs.ErrNotFound)
		case 1:
			resolved = append(resolved, Resolved{Target: target, Variant: matches[0]})
		default:
			return nil, fmt.Errorf("%w: %s matches %d variants: %w", ErrAmbiguousVariant, target, len(matches), errdefs.ErrConflict)
		}
	}

	return resolved, nil
}
