package platform

import (
	"fmt"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/containerd/platforms"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Nicknames used in architecture strings. Values not listed are used as-is.
var (
	osNames = map[string]string{
		"darwin": "macos",
	}
	archNames = map[string]string{
		"amd64": "x64",
		"386":   "x86",
	}
)

// A platform a native binary is built for or supplied for.
//
// The zero value is not a valid target. Use [New] or [Parse].
type Target struct {
	spec    ocispec.Platform // Normalized OCI platform.
	archStr string           // Architecture string used in artifact names.
	host    bool             // Whether the platform is the build machine.
}

// Returns the normalized platform of the machine running the build.
func Host() ocispec.Platform {
	return platforms.Normalize(platforms.DefaultSpec())
}

// Creates a [Target] for the given platform.
//
// The platform is normalized before use. The host flag is computed once
// against the given host platform and never changes afterwards.
func New(spec ocispec.Platform, host ocispec.Platform) Target {
	spec = platforms.Normalize(spec)
	return Target{
		spec:    spec,
		archStr: defaultArchitectureString(spec),
		host:    same(spec, host),
	}
}

// Parses a platform specifier such as "linux/amd64" or "macos/arm64".
//
// Specifiers follow containerd's syntax but must name both the operating
// system and the architecture; "windows" alone is rejected rather than
// defaulted to the build machine's architecture. "macos" is accepted as an
// alias for "darwin".
func Parse(specifier string, host ocispec.Platform) (Target, error) {
	s := strings.TrimSpace(specifier)
	if s == "" {
		return Target{}, fmt.Errorf("%w: empty specifier: %w", ErrInvalidPlatform, errdefs.ErrInvalidArgument)
	}
	if rest, ok := strings.CutPrefix(s, "macos"); ok {
		s = "darwin" + rest
	}
	if !strings.Contains(s, "/") {
		return Target{}, fmt.Errorf("%w: %q lacks an architecture: %w", ErrInvalidPlatform, specifier, errdefs.ErrInvalidArgument)
	}

	spec, err := platforms.Parse(s)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %q: %w", ErrInvalidPlatform, specifier, err)
	}

	return New(spec, host), nil
}

// Returns a copy of the target with the architecture string replaced.
//
// An empty string keeps the current value.
func (t Target) WithArchitectureString(s string) Target {
	if s = strings.TrimSpace(s); s != "" {
		t.archStr = s
	}
	return t
}

// Returns the OCI platform descriptor.
func (t Target) Spec() ocispec.Platform {
	return t.spec
}

// Returns the string used to name the per-platform artifact, as in
// "<component>-<architecture string>".
func (t Target) ArchitectureString() string {
	return t.archStr
}

// Whether the platform is the machine running the build.
func (t Target) IsHost() bool {
	return t.host
}

// Whether both targets describe the same platform.
//
// Only the platform descriptor is compared. Architecture strings and host
// flags are presentation and do not affect identity.
func (t Target) Equal(other Target) bool {
	return same(t.spec, other.spec)
}

// Returns the platform in containerd's "os/arch[/variant]" form.
func (t Target) String() string {
	if t.spec.OS == "" {
		return "(invalid)"
	}
	return platforms.Format(t.spec)
}

// Builds the default architecture string, "<os>-<arch>[-<variant>]".
func defaultArchitectureString(spec ocispec.Platform) string {
	parts := []string{nickname(osNames, spec.OS), nickname(archNames, spec.Architecture)}
	if spec.Variant != "" {
		parts = append(parts, spec.Variant)
	}
	return strings.Join(parts, "-")
}

func nickname(names map[string]string, s string) string {
	if n, ok := names[s]; ok {
		return n
	}
	return s
}

// Whether two platforms are identical after normalization. Compatible
// platforms (arm/v7 on an arm64 host) do not count.
func same(a, b ocispec.Platform) bool {
	return platforms.NewMatcher(platforms.Normalize(a)).Match(platforms.Normalize(b))
}
