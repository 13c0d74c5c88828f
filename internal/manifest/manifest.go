package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/containerd/errdefs"
	"github.com/cruciblehq/uberjni/internal/platform"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"gopkg.in/yaml.v3"
)

// Default step name of the primary archive.
const DefaultArchiveStep = "jar"

// Describes a component and how its native binaries are merged.
type Manifest struct {
	Component string     `yaml:"component" toml:"component"` // Component name, prefix of artifact names.
	Host      string     `yaml:"host" toml:"host"`           // Build machine platform. Empty detects it.
	Defaults  Defaults   `yaml:"defaults" toml:"defaults"`   // Modifiers for every link command.
	Archive   Archive    `yaml:"archive" toml:"archive"`     // Primary archive.
	Platforms []Platform `yaml:"platforms" toml:"platforms"` // Declared target platforms.
	Groups    []Group    `yaml:"groups" toml:"groups"`       // Output groups publishing artifacts.

	// Directory the manifest was loaded from. Relative paths resolve against it.
	Root string `yaml:"-" toml:"-"`
}

// Shell, working directory, and environment shared by all link commands.
//
// A relative workdir resolves against the manifest directory.
type Defaults struct {
	Shell   string            `yaml:"shell" toml:"shell"`
	Workdir string            `yaml:"workdir" toml:"workdir"`
	Env     map[string]string `yaml:"env" toml:"env"`
}

// The primary archive.
type Archive struct {
	Step     string    `yaml:"step" toml:"step"`         // Step name. Defaults to "jar".
	Output   string    `yaml:"output" toml:"output"`     // Archive file to write.
	Contents []Content `yaml:"contents" toml:"contents"` // Non-native contents, such as compiled classes.
}

// A file or directory copied into an archive.
type Content struct {
	From string `yaml:"from" toml:"from"` // File or directory on disk.
	Into string `yaml:"into" toml:"into"` // Directory inside the archive. Empty is the root.
}

// A target platform and the variant built for it.
type Platform struct {
	Platform   string   `yaml:"platform" toml:"platform"`     // Specifier, e.g. "linux/amd64".
	Classifier string   `yaml:"classifier" toml:"classifier"` // Architecture string override.
	Resource   string   `yaml:"resource" toml:"resource"`     // Resource path override.
	Link       Link     `yaml:"link" toml:"link"`             // Link step, run on the host only.
	Runtime    []string `yaml:"runtime" toml:"runtime"`       // Prebuilt files or globs for other platforms.
}

// A command producing a shared library.
type Link struct {
	Run     string            `yaml:"run" toml:"run"`         // Shell command.
	Output  string            `yaml:"output" toml:"output"`   // File the command writes.
	Shell   string            `yaml:"shell" toml:"shell"`     // Shell override.
	Workdir string            `yaml:"workdir" toml:"workdir"` // Working directory override.
	Env     map[string]string `yaml:"env" toml:"env"`         // Extra environment variables.
}

// An output group and the artifacts it publishes.
type Group struct {
	Name      string     `yaml:"name" toml:"name"`
	Artifacts []Artifact `yaml:"artifacts" toml:"artifacts"`
}

// A published artifact.
type Artifact struct {
	Name string `yaml:"name" toml:"name"`
	File string `yaml:"file" toml:"file"`
}

// Loads and validates a manifest.
//
// Files ending in .toml are decoded as TOML, everything else as YAML.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, errdefs.ErrNotFound)
		}
		return nil, fmt.Errorf("%w (%s): %w", ErrLoad, path, err)
	}

	m, err := Parse(data, strings.EqualFold(filepath.Ext(path), ".toml"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %w", ErrLoad, path, err)
	}
	m.Root = root

	return m, nil
}

// Decodes and validates a manifest from memory.
func Parse(data []byte, isTOML bool) (*Manifest, error) {
	var m Manifest

	if isTOML {
		md, err := toml.Decode(string(data), &m)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoad, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return nil, fmt.Errorf("%w: unknown keys %s", ErrLoad, strings.Join(keys, ", "))
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoad, err)
		}
	}

	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	m.Component = strings.TrimSpace(m.Component)
	if strings.TrimSpace(m.Archive.Step) == "" {
		m.Archive.Step = DefaultArchiveStep
	}
}

// Checks the manifest for missing or conflicting fields.
func (m *Manifest) Validate() error {
	if m.Component == "" {
		return invalidf("missing component")
	}
	if strings.ContainsAny(m.Component, `/\ `) {
		return invalidf("component %q contains a path separator or space", m.Component)
	}
	if strings.TrimSpace(m.Archive.Output) == "" {
		return invalidf("missing archive output")
	}
	for i, c := range m.Archive.Contents {
		if strings.TrimSpace(c.From) == "" {
			return invalidf("archive contents[%d]: missing from", i)
		}
		if escapesRoot(c.Into) {
			return invalidf("archive contents[%d]: %q leaves the archive root", i, c.Into)
		}
	}
	if len(m.Platforms) == 0 {
		return invalidf("no platforms declared")
	}
	for i, p := range m.Platforms {
		if strings.TrimSpace(p.Platform) == "" {
			return invalidf("platform[%d]: missing platform", i)
		}
		if escapesRoot(p.Resource) {
			return invalidf("platform[%d]: resource %q leaves the archive root", i, p.Resource)
		}
		if (p.Link.Run == "") != (p.Link.Output == "") {
			return invalidf("platform[%d]: link needs both run and output", i)
		}
	}
	for i, g := range m.Groups {
		if strings.TrimSpace(g.Name) == "" {
			return invalidf("group[%d]: missing name", i)
		}
		for j, a := range g.Artifacts {
			if strings.TrimSpace(a.Name) == "" {
				return invalidf("group %q artifact[%d]: missing name", g.Name, j)
			}
		}
	}
	return nil
}

// Returns the build machine's platform.
//
// The manifest's host field wins over detection, which lets a build on one
// machine behave as if it ran on another.
func (m *Manifest) HostPlatform() (ocispec.Platform, error) {
	if strings.TrimSpace(m.Host) == "" {
		return platform.Host(), nil
	}
	t, err := platform.Parse(m.Host, ocispec.Platform{})
	if err != nil {
		return ocispec.Platform{}, fmt.Errorf("%w: host: %w", ErrInvalid, err)
	}
	return t.Spec(), nil
}

// Parses the declared platforms in declaration order.
//
// Classifier overrides replace the default architecture string.
func (m *Manifest) Targets(host ocispec.Platform) ([]platform.Target, error) {
	targets := make([]platform.Target, 0, len(m.Platforms))
	for i, p := range m.Platforms {
		t, err := platform.Parse(p.Platform, host)
		if err != nil {
			return nil, fmt.Errorf("%w: platform[%d]: %w", ErrInvalid, i, err)
		}
		targets = append(targets, t.WithArchitectureString(p.Classifier))
	}
	return targets, nil
}

// Resolves a manifest-relative path.
func (m *Manifest) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, filepath.FromSlash(p))
}

// Whether an archive directory climbs above the archive root.
func escapesRoot(dir string) bool {
	dir = path.Clean(strings.ReplaceAll(dir, "\\", "/"))
	return dir == ".." || strings.HasPrefix(dir, "../")
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s: %w", ErrInvalid, fmt.Sprintf(format, args...), errdefs.ErrInvalidArgument)
}
