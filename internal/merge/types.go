package merge

import (
	"github.com/cruciblehq/uberjni/internal/platform"
)

// Identifies a step in the host build graph.
type StepID string

// A build configuration instance for one target platform.
//
// Variants are read-only to this package.
type Variant struct {
	Platform     platform.Target // Platform the variant targets.
	LinkStep     StepID          // Step producing the shared library.
	LinkedFile   string          // Path the link step writes. May not exist yet.
	ResourcePath string          // Directory inside the archive, e.g. "linux-x64".
	ArchiveStep  StepID          // Dedicated per-variant archive step.
	RuntimeFiles []string        // Prebuilt files, used when the platform is not the host.
}

// A publishable artifact registered in an output group.
type Artifact struct {
	Name string // Artifact name, e.g. "mylib-linux-x64".
	File string // File backing the artifact. Never touched here.
}

// A named output group capable of publishing artifacts.
type ArtifactGroup struct {
	Name      string
	Artifacts []Artifact
}

// Whether the group publishes an artifact with the given name.
func (g *ArtifactGroup) Has(name string) bool {
	for _, a := range g.Artifacts {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Maps a binary source into a directory of the archive.
type Mapping struct {
	Source BinarySource // Files to package, resolved when the archive is written.
	Into   string       // Destination directory inside the archive.
}

// The primary archive step and the inputs registered on it.
type Archive struct {
	Step       StepID    // Step writing the archive.
	Mappings   []Mapping // Source files to destination directories.
	DependsOn  []StepID  // Steps that must complete before the archive is written.
	configured bool
}

// Whether a plan has been applied to the archive.
func (a *Archive) Configured() bool {
	return a.configured
}

// Returns the mapping registered for the given destination directory.
func (a *Archive) MappingFor(into string) (Mapping, bool) {
	for _, m := range a.Mappings {
		if m.Into == into {
			return m, true
		}
	}
	return Mapping{}, false
}
