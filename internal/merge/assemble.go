package merge

import (
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/cruciblehq/uberjni/internal/platform"
)

// Everything a configuration pass reads.
//
// Targets must be final before [Configure] runs.
type Input struct {
	Component string            // Component name, prefix of per-variant artifact names.
	Targets   []platform.Target // Declared target platforms.
	Variants  []Variant         // All variants known to the build.
	Groups    []*ArtifactGroup  // Output groups that may publish artifacts.
	Archive   *Archive          // Primary archive. May be nil when only planning.
}

// The mutations of one configuration pass, prepared but not yet committed.
type Plan struct {
	Component string            // Component name the plan was prepared for.
	Variants  []Resolved        // One entry per target, in target order.
	Artifacts []string          // Per-variant artifact names to drop from publication.
	Removals  []Removal         // Artifacts matching Artifacts when the plan was prepared.
	Disabled  []StepID          // Per-variant archive steps to disable.
	DependsOn []StepID          // Steps the primary archive must wait for.
	Mappings  []Mapping         // Binary sources to archive directories.
	Omitted   []platform.Target // Non-host targets without prebuilt files.
}

// Prepares the merge of all variants into the primary archive.
//
// Configure resolves one variant per target, selects each variant's binary
// source, and records the mutations needed to fold the variants into the
// primary archive. Every variant, declared or not, has its archive step
// disabled and its link step added as a dependency. Only declared targets
// get mappings. Configure reads its input and changes nothing. Any failure
// is returned before a plan exists, so nothing can be partially applied.
func Configure(in Input) (*Plan, error) {
	if in.Archive != nil && in.Archive.configured {
		return nil, fmt.Errorf("%w: %s: %w", ErrAlreadyConfigured, in.Archive.Step, errdefs.ErrFailedPrecondition)
	}

	resolved, err := ResolveVariants(in.Targets, in.Variants)
	if err != nil {
		return nil, err
	}

	p := &Plan{
		Component: in.Component,
		Variants:  resolved,
		Artifacts: VariantArtifactNames(in.Component, in.Targets),
	}
	p.Removals = matchingArtifacts(in.Groups, p.Artifacts)

	owners := make(map[string]platform.Target, len(resolved))
	for _, r := range resolved {
		v := r.Variant

		into, err := ResourceDir(v.ResourcePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidVariant, r.Target, err)
		}
		if owner, ok := owners[into]; ok {
			return nil, fmt.Errorf("%w: %q claimed by %s and %s: %w", ErrDuplicateResourcePath, into, owner, r.Target, errdefs.ErrConflict)
		}
		owners[into] = r.Target

		p.addVariantSteps(v)

		switch src := SelectSource(v).(type) {
		case LocalBuildOutput:
			if src.Step == "" || src.File == "" {
				return nil, fmt.Errorf("%w: host variant %s needs a link step and output: %w", ErrInvalidVariant, r.Target, errdefs.ErrInvalidArgument)
			}
			p.Mappings = append(p.Mappings, Mapping{Source: src, Into: into})
		case PrebuiltRuntimeFiles:
			if len(src.Paths) == 0 {
				p.Omitted = append(p.Omitted, r.Target)
				continue
			}
			p.Mappings = append(p.Mappings, Mapping{Source: src, Into: into})
		}
	}

	// Variants of undeclared platforms come last.
	for _, v := range in.Variants {
		p.addVariantSteps(v)
	}

	return p, nil
}

// Disables the variant's archive step and orders the primary archive after
// its link step.
func (p *Plan) addVariantSteps(v Variant) {
	if v.ArchiveStep != "" {
		p.Disabled = appendUnique(p.Disabled, v.ArchiveStep)
	}
	if v.LinkStep != "" {
		p.DependsOn = appendUnique(p.DependsOn, v.LinkStep)
	}
}

// Commits the plan.
//
// The per-variant artifacts are removed from every group, and the mappings
// and dependencies are registered on the archive. An archive accepts one
// plan; a second call fails with [ErrAlreadyConfigured]. Disabling the
// per-variant archive steps is left to the caller, which owns the steps.
func (p *Plan) Apply(groups []*ArtifactGroup, archive *Archive) error {
	if archive == nil {
		return fmt.Errorf("%w: %w", ErrNoArchive, errdefs.ErrInvalidArgument)
	}
	if archive.configured {
		return fmt.Errorf("%w: %s: %w", ErrAlreadyConfigured, archive.Step, errdefs.ErrFailedPrecondition)
	}

	slog.Info("merging binaries into the primary archive",
		"component", p.Component,
		"archive", archive.Step,
		"platforms", len(p.Variants),
	)

	p.Removals = FilterArtifacts(groups, p.Artifacts)
	for _, r := range p.Removals {
		slog.Debug("artifact unpublished", "group", r.Group, "artifact", r.Artifact.Name)
	}

	for _, dep := range p.DependsOn {
		archive.DependsOn = appendUnique(archive.DependsOn, dep)
	}

	for _, m := range p.Mappings {
		slog.Debug("binary mapped", "into", m.Into, "files", len(m.Source.Files()))
		archive.Mappings = append(archive.Mappings, m)
	}

	for _, t := range p.Omitted {
		slog.Debug("no prebuilt runtime files, platform omitted", "platform", t.String())
	}

	archive.configured = true
	return nil
}

// Prepares and commits the merge in one call.
func Run(in Input) (*Plan, error) {
	p, err := Configure(in)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(in.Groups, in.Archive); err != nil {
		return nil, err
	}
	return p, nil
}

// Normalizes a resource path to a slash-separated directory without leading
// or trailing slashes.
func ResourceDir(p string) (string, error) {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	dir := strings.Trim(path.Clean("/"+p), "/")
	if dir == "" {
		return "", fmt.Errorf("empty resource path: %w", errdefs.ErrInvalidArgument)
	}
	return dir, nil
}

func appendUnique(ids []StepID, id StepID) []StepID {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}
