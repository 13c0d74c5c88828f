package build

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/cruciblehq/uberjni/internal/manifest"
	"github.com/cruciblehq/uberjni/internal/merge"
	"github.com/cruciblehq/uberjni/internal/paths"
	"github.com/cruciblehq/uberjni/internal/platform"
)

// Output group the per-variant archives are published through until a
// merge removes them.
const VariantGroup = "variantElements"

// A component's build graph, publications, and primary archive.
type Project struct {
	Component string                 // Component name.
	Root      string                 // Directory relative paths resolve against.
	Graph     *Graph                 // Steps and ordering edges.
	Groups    []*merge.ArtifactGroup // Output groups publishing artifacts.
	Archive   *merge.Archive         // Primary archive.
	Targets   []platform.Target      // Declared target platforms.
	Variants  []merge.Variant        // One variant per declared platform.
	defaults  modifiers              // Project-wide command modifiers.
}

// Creates a [Project] from a manifest.
//
// Each declared platform gets a link step, a per-variant archive step that
// packages the variant alone, and a per-variant artifact in [VariantGroup].
// Host platforms link with their manifest command. Other platforms use
// prebuilt files, from the manifest's runtime globs or, when none are
// given, from the user's prebuilt cache directory.
func NewProject(m *manifest.Manifest) (*Project, error) {
	host, err := m.HostPlatform()
	if err != nil {
		return nil, err
	}
	targets, err := m.Targets(host)
	if err != nil {
		return nil, err
	}

	p := &Project{
		Component: m.Component,
		Root:      m.Root,
		Graph:     NewGraph(),
		Archive:   &merge.Archive{Step: merge.StepID(m.Archive.Step)},
		Targets:   targets,
		defaults: modifiers{
			Shell:   m.Defaults.Shell,
			Workdir: m.Defaults.Workdir,
			Env:     m.Defaults.Env,
		},
	}

	variants := &merge.ArtifactGroup{Name: VariantGroup}
	p.Groups = append(p.Groups, variants)
	for _, g := range m.Groups {
		group := &merge.ArtifactGroup{Name: g.Name}
		for _, a := range g.Artifacts {
			group.Artifacts = append(group.Artifacts, merge.Artifact{Name: a.Name, File: m.Path(a.File)})
		}
		p.Groups = append(p.Groups, group)
	}

	outDir := filepath.Dir(m.Path(m.Archive.Output))
	for i, t := range targets {
		decl := m.Platforms[i]
		v, err := p.addVariant(m, t, decl, outDir)
		if err != nil {
			return nil, err
		}
		p.Variants = append(p.Variants, v)
		variants.Artifacts = append(variants.Artifacts, merge.Artifact{
			Name: merge.VariantArtifactName(p.Component, t),
			File: p.variantArchivePath(outDir, t),
		})
	}

	contents := make([]content, 0, len(m.Archive.Contents))
	for _, c := range m.Archive.Contents {
		contents = append(contents, content{from: m.Path(c.From), into: c.Into})
	}
	primary := &Step{
		ID:   p.Archive.Step,
		Kind: StepArchive,
		Archive: &archiveSpec{
			output:   m.Path(m.Archive.Output),
			contents: contents,
			mappings: func() []merge.Mapping { return p.Archive.Mappings },
		},
	}
	if err := p.Graph.Add(primary); err != nil {
		return nil, err
	}

	return p, nil
}

// Registers the steps of one platform and returns its variant.
func (p *Project) addVariant(m *manifest.Manifest, t platform.Target, decl manifest.Platform, outDir string) (merge.Variant, error) {
	arch := t.ArchitectureString()
	v := merge.Variant{
		Platform:     t,
		LinkStep:     merge.StepID("link-" + arch),
		LinkedFile:   m.Path(decl.Link.Output),
		ResourcePath: decl.Resource,
		ArchiveStep:  merge.StepID("jar-" + arch),
	}
	if v.ResourcePath == "" {
		v.ResourcePath = arch
	}

	link := &Step{ID: v.LinkStep, Kind: StepNoop}
	if t.IsHost() && decl.Link.Run != "" {
		link.Kind = StepCommand
		link.Run = decl.Link.Run
		link.Outputs = []string{v.LinkedFile}
		link.Modifiers = modifiers{
			Shell:   decl.Link.Shell,
			Workdir: decl.Link.Workdir,
			Env:     decl.Link.Env,
		}
	}
	if !t.IsHost() {
		files, err := prebuiltFiles(m, decl.Runtime, p.Component, arch)
		if err != nil {
			return merge.Variant{}, err
		}
		v.RuntimeFiles = files
	}

	// The per-variant archive holds the variant's binary alone.
	single := merge.Mapping{Source: merge.SelectSource(v), Into: v.ResourcePath}
	jar := &Step{
		ID:        v.ArchiveStep,
		Kind:      StepArchive,
		DependsOn: []merge.StepID{v.LinkStep},
		Archive: &archiveSpec{
			output:   p.variantArchivePath(outDir, t),
			mappings: func() []merge.Mapping { return []merge.Mapping{single} },
		},
	}

	for _, s := range []*Step{link, jar} {
		if err := p.Graph.Add(s); err != nil {
			return merge.Variant{}, fmt.Errorf("platform %s: %w", t, err)
		}
	}
	return v, nil
}

func (p *Project) variantArchivePath(outDir string, t platform.Target) string {
	return filepath.Join(outDir, merge.VariantArtifactName(p.Component, t)+".jar")
}

// Returns the input for a merge configuration pass.
func (p *Project) Input() merge.Input {
	return merge.Input{
		Component: p.Component,
		Targets:   p.Targets,
		Variants:  p.Variants,
		Groups:    p.Groups,
		Archive:   p.Archive,
	}
}

// Prepares a merge plan without applying it.
func (p *Project) Plan() (*merge.Plan, error) {
	return merge.Configure(p.Input())
}

// Applies a merge plan to the project.
//
// Every step the plan names is checked before anything changes. Then the
// plan is committed to the groups and primary archive, the per-variant
// archive steps are disabled, and the primary archive step is ordered after
// every step the archive depends on.
func (p *Project) Apply(plan *merge.Plan) error {
	for _, id := range slices.Concat(plan.Disabled, plan.DependsOn) {
		if _, err := p.Graph.lookup(id); err != nil {
			return err
		}
	}

	if err := plan.Apply(p.Groups, p.Archive); err != nil {
		return err
	}

	for _, id := range plan.Disabled {
		if err := p.Graph.Disable(id); err != nil {
			return err
		}
		slog.Debug("per-variant archive disabled", "step", id)
	}
	for _, dep := range p.Archive.DependsOn {
		if err := p.Graph.DependOn(p.Archive.Step, dep); err != nil {
			return err
		}
	}
	return nil
}

// Plans and applies the merge in one call.
func (p *Project) Merge() (*merge.Plan, error) {
	plan, err := p.Plan()
	if err != nil {
		return nil, err
	}
	if err := p.Apply(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Expands the prebuilt runtime files of a non-host platform.
//
// Patterns are manifest-relative globs. Without patterns, every regular
// file in the platform's prebuilt cache directory is used. A missing
// directory or unmatched pattern yields no files.
func prebuiltFiles(m *manifest.Manifest, patterns []string, component, arch string) ([]string, error) {
	var files []string

	if len(patterns) == 0 {
		dir := paths.Prebuilt(component, arch)
		entries, err := os.ReadDir(dir)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
		}
		for _, e := range entries {
			if e.Type().IsRegular() {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
		return files, nil
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(m.Path(pattern))
		if err != nil {
			return nil, fmt.Errorf("%w: runtime pattern %q: %w", manifest.ErrInvalid, pattern, err)
		}
		for _, f := range matches {
			if !slices.Contains(files, f) {
				files = append(files, f)
			}
		}
	}
	slices.Sort(files)
	return files, nil
}
