package merge

import (
	"errors"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/cruciblehq/uberjni/internal/platform"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

var host = ocispec.Platform{OS: "linux", Architecture: "amd64"}

func target(os, arch, archStr string) platform.Target {
	return platform.New(ocispec.Platform{OS: os, Architecture: arch}, host).WithArchitectureString(archStr)
}

var (
	linuxX64   = target("linux", "amd64", "x64")
	windowsX64 = target("windows", "amd64", "windows-x64")
	macosArm64 = target("darwin", "arm64", "macos-arm64")
)

func linuxVariant() Variant {
	return Variant{
		Platform:     linuxX64,
		LinkStep:     "linkLinuxX64",
		LinkedFile:   "build/linux-x64/libmylib.so",
		ResourcePath: "linux-x64",
		ArchiveStep:  "jarLinuxX64",
	}
}

func windowsVariant(files ...string) Variant {
	return Variant{
		Platform:     windowsX64,
		LinkStep:     "linkWindowsX64",
		LinkedFile:   "build/windows-x64/mylib.dll",
		ResourcePath: "windows-x64/",
		ArchiveStep:  "jarWindowsX64",
		RuntimeFiles: files,
	}
}

func publications() []*ArtifactGroup {
	return []*ArtifactGroup{
		{Name: "runtimeElements", Artifacts: []Artifact{
			{Name: "mylib", File: "build/libs/mylib.jar"},
			{Name: "mylib-x64", File: "build/libs/mylib-x64.jar"},
		}},
		{Name: "apiElements", Artifacts: []Artifact{
			{Name: "mylib-windows-x64", File: "build/libs/mylib-windows-x64.jar"},
			{Name: "mylib-sources", File: "build/libs/mylib-sources.jar"},
		}},
	}
}

var archiveOpts = cmpopts.IgnoreUnexported(Archive{})

func TestResolveVariants(t *testing.T) {
	extra := Variant{Platform: macosArm64, ResourcePath: "macos-arm64"}

	tests := []struct {
		name     string
		targets  []platform.Target
		variants []Variant
		want     []string
		wantErr  error
		class    func(error) bool
	}{
		{
			name:     "one variant per target",
			targets:  []platform.Target{windowsX64, linuxX64},
			variants: []Variant{linuxVariant(), windowsVariant()},
			want:     []string{"jarWindowsX64", "jarLinuxX64"},
		},
		{
			name:     "undeclared variants are ignored",
			targets:  []platform.Target{linuxX64},
			variants: []Variant{linuxVariant(), extra},
			want:     []string{"jarLinuxX64"},
		},
		{
			name:     "missing",
			targets:  []platform.Target{macosArm64},
			variants: []Variant{linuxVariant()},
			wantErr:  ErrMissingVariant,
			class:    errdefs.IsNotFound,
		},
		{
			name:     "ambiguous",
			targets:  []platform.Target{linuxX64},
			variants: []Variant{linuxVariant(), linuxVariant()},
			wantErr:  ErrAmbiguousVariant,
			class:    errdefs.IsConflict,
		},
		{
			name:     "target declared twice",
			targets:  []platform.Target{linuxX64, target("linux", "x86_64", "other")},
			variants: []Variant{linuxVariant()},
			wantErr:  ErrAmbiguousVariant,
			class:    errdefs.IsConflict,
		},
		{
			name: "no targets",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveVariants(tt.targets, tt.variants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if !tt.class(err) {
					t.Fatalf("err = %v has the wrong errdefs class", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			steps := make([]string, 0, len(got))
			for i, r := range got {
				if !r.Target.Equal(tt.targets[i]) {
					t.Fatalf("result %d is for %s, want %s", i, r.Target, tt.targets[i])
				}
				if !r.Variant.Platform.Equal(r.Target) {
					t.Fatalf("variant for %s targets %s", r.Target, r.Variant.Platform)
				}
				steps = append(steps, string(r.Variant.ArchiveStep))
			}
			if diff := cmp.Diff(tt.want, steps); diff != "" {
				t.Fatalf("resolved archive steps (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectSource(t *testing.T) {
	switch src := SelectSource(linuxVariant()).(type) {
	case LocalBuildOutput:
		if src.Step != "linkLinuxX64" || src.File != "build/linux-x64/libmylib.so" {
			t.Fatalf("host source = %+v", src)
		}
	default:
		t.Fatalf("host source = %T, want LocalBuildOutput", src)
	}

	files := []string{"a.dll", "b.dll"}
	switch src := SelectSource(windowsVariant(files...)).(type) {
	case PrebuiltRuntimeFiles:
		if diff := cmp.Diff(files, src.Files()); diff != "" {
			t.Fatalf("prebuilt files (-want +got):\n%s", diff)
		}
		files[0] = "mutated.dll"
		if src.Paths[0] != "a.dll" {
			t.Fatal("prebuilt source aliases the variant's slice")
		}
	default:
		t.Fatalf("non-host source = %T, want PrebuiltRuntimeFiles", src)
	}
}

func TestRunHostAndPrebuilt(t *testing.T) {
	groups := publications()
	archive := &Archive{Step: "jar"}

	plan, err := Run(Input{
		Component: "mylib",
		Targets:   []platform.Target{linuxX64, windowsX64},
		Variants:  []Variant{windowsVariant("prebuilt/mylib.dll", "prebuilt/mylib.pdb"), linuxVariant()},
		Groups:    groups,
		Archive:   archive,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &Archive{
		Step: "jar",
		Mappings: []Mapping{
			{Source: LocalBuildOutput{Step: "linkLinuxX64", File: "build/linux-x64/libmylib.so"}, Into: "linux-x64"},
			{Source: PrebuiltRuntimeFiles{Paths: []string{"prebuilt/mylib.dll", "prebuilt/mylib.pdb"}}, Into: "windows-x64"},
		},
		DependsOn: []StepID{"linkLinuxX64", "linkWindowsX64"},
	}
	if diff := cmp.Diff(want, archive, archiveOpts); diff != "" {
		t.Fatalf("archive (-want +got):\n%s", diff)
	}
	if !archive.Configured() {
		t.Fatal("archive should be configured")
	}

	if diff := cmp.Diff([]StepID{"jarLinuxX64", "jarWindowsX64"}, plan.Disabled); diff != "" {
		t.Fatalf("disabled steps (-want +got):\n%s", diff)
	}

	for _, g := range groups {
		for _, name := range []string{"mylib-x64", "mylib-windows-x64"} {
			if g.Has(name) {
				t.Fatalf("group %s still publishes %s", g.Name, name)
			}
		}
	}
	if !groups[0].Has("mylib") || !groups[1].Has("mylib-sources") {
		t.Fatal("unrelated artifacts were removed")
	}
	if len(plan.Removals) != 2 {
		t.Fatalf("len(Removals) = %d, want 2", len(plan.Removals))
	}
}

func TestConfigureDisablesUndeclaredVariants(t *testing.T) {
	extra := Variant{
		Platform:     macosArm64,
		LinkStep:     "linkMacosArm64",
		ResourcePath: "macos-arm64",
		ArchiveStep:  "jarMacosArm64",
	}

	plan, err := Configure(Input{
		Component: "mylib",
		Targets:   []platform.Target{linuxX64},
		Variants:  []Variant{extra, linuxVariant()},
		Archive:   &Archive{Step: "jar"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]StepID{"jarLinuxX64", "jarMacosArm64"}, plan.Disabled); diff != "" {
		t.Fatalf("disabled steps (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]StepID{"linkLinuxX64", "linkMacosArm64"}, plan.DependsOn); diff != "" {
		t.Fatalf("dependencies (-want +got):\n%s", diff)
	}
	if len(plan.Mappings) != 1 || plan.Mappings[0].Into != "linux-x64" {
		t.Fatalf("mappings = %+v, want only linux-x64", plan.Mappings)
	}
	if diff := cmp.Diff([]string{"mylib-x64"}, plan.Artifacts); diff != "" {
		t.Fatalf("artifacts (-want +got):\n%s", diff)
	}
}

func TestConfigureFailureLeavesInputUntouched(t *testing.T) {
	tests := []struct {
		name     string
		targets  []platform.Target
		variants []Variant
		wantErr  error
	}{
		{
			name:     "missing variant",
			targets:  []platform.Target{linuxX64, macosArm64},
			variants: []Variant{linuxVariant()},
			wantErr:  ErrMissingVariant,
		},
		{
			name:     "ambiguous variant",
			targets:  []platform.Target{linuxX64, windowsX64},
			variants: []Variant{linuxVariant(), windowsVariant("a.dll"), windowsVariant("b.dll")},
			wantErr:  ErrAmbiguousVariant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := publications()
			archive := &Archive{
				Step:     "jar",
				Mappings: []Mapping{{Source: PrebuiltRuntimeFiles{Paths: []string{"README"}}, Into: "docs"}},
			}

			_, err := Run(Input{
				Component: "mylib",
				Targets:   tt.targets,
				Variants:  tt.variants,
				Groups:    groups,
				Archive:   archive,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}

			if diff := cmp.Diff(publications(), groups); diff != "" {
				t.Fatalf("groups changed (-want +got):\n%s", diff)
			}
			if len(archive.Mappings) != 1 || len(archive.DependsOn) != 0 || archive.Configured() {
				t.Fatalf("archive changed: %+v", archive)
			}
		})
	}
}

func TestEmptyPrebuiltSetIsOmitted(t *testing.T) {
	archive := &Archive{Step: "jar"}

	plan, err := Run(Input{
		Component: "mylib",
		Targets:   []platform.Target{linuxX64, windowsX64},
		Variants:  []Variant{linuxVariant(), windowsVariant()},
		Archive:   archive,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := archive.MappingFor("windows-x64"); ok {
		t.Fatal("empty prebuilt set should not register a mapping")
	}
	if _, ok := archive.MappingFor("linux-x64"); !ok {
		t.Fatal("host mapping missing")
	}
	if len(plan.Omitted) != 1 || !plan.Omitted[0].Equal(windowsX64) {
		t.Fatalf("Omitted = %v, want [windows/amd64]", plan.Omitted)
	}

	// Omitted platforms still lose their per-variant archive.
	if diff := cmp.Diff([]StepID{"jarLinuxX64", "jarWindowsX64"}, plan.Disabled); diff != "" {
		t.Fatalf("disabled steps (-want +got):\n%s", diff)
	}
}

func TestHostMappingUsesOwnOutput(t *testing.T) {
	hostArm := platform.New(ocispec.Platform{OS: "linux", Architecture: "arm64"}, ocispec.Platform{OS: "linux", Architecture: "arm64"})
	armVariant := Variant{
		Platform:     hostArm,
		LinkStep:     "linkLinuxArm64",
		LinkedFile:   "build/linux-arm64/libmylib.so",
		ResourcePath: "linux-arm64",
	}

	// linuxX64 is not the host here; only the arm64 variant is built locally.
	x64 := linuxVariant()
	x64.Platform = platform.New(ocispec.Platform{OS: "linux", Architecture: "amd64"}, hostArm.Spec())
	x64.RuntimeFiles = []string{"prebuilt/libmylib.so"}

	plan, err := Configure(Input{
		Component: "mylib",
		Targets:   []platform.Target{x64.Platform, hostArm},
		Variants:  []Variant{x64, armVariant},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, m := range plan.Mappings {
		switch src := m.Source.(type) {
		case LocalBuildOutput:
			if m.Into != "linux-arm64" || src.File != armVariant.LinkedFile || src.Step != armVariant.LinkStep {
				t.Fatalf("host mapping = %+v into %q", src, m.Into)
			}
		case PrebuiltRuntimeFiles:
			if m.Into != "linux-x64" {
				t.Fatalf("prebuilt files mapped into %q", m.Into)
			}
		}
	}
}

func TestDuplicateResourcePath(t *testing.T) {
	w := windowsVariant("mylib.dll")
	w.ResourcePath = "/linux-x64/"

	_, err := Configure(Input{
		Component: "mylib",
		Targets:   []platform.Target{linuxX64, windowsX64},
		Variants:  []Variant{linuxVariant(), w},
	})
	if !errors.Is(err, ErrDuplicateResourcePath) {
		t.Fatalf("err = %v, want ErrDuplicateResourcePath", err)
	}
	if !errdefs.IsConflict(err) {
		t.Fatalf("err = %v, want conflict class", err)
	}
}

func TestInvalidVariants(t *testing.T) {
	noPath := linuxVariant()
	noPath.ResourcePath = " / "

	noLink := linuxVariant()
	noLink.LinkStep = ""

	for name, v := range map[string]Variant{"empty resource path": noPath, "host without link step": noLink} {
		t.Run(name, func(t *testing.T) {
			_, err := Configure(Input{
				Component: "mylib",
				Targets:   []platform.Target{linuxX64},
				Variants:  []Variant{v},
			})
			if !errors.Is(err, ErrInvalidVariant) {
				t.Fatalf("err = %v, want ErrInvalidVariant", err)
			}
			if !errdefs.IsInvalidArgument(err) {
				t.Fatalf("err = %v, want invalid argument class", err)
			}
		})
	}
}

func TestApplyOnce(t *testing.T) {
	in := Input{
		Component: "mylib",
		Targets:   []platform.Target{linuxX64},
		Variants:  []Variant{linuxVariant()},
		Archive:   &Archive{Step: "jar"},
	}

	plan, err := Run(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := plan.Apply(nil, in.Archive); !errors.Is(err, ErrAlreadyConfigured) {
		t.Fatalf("second Apply err = %v, want ErrAlreadyConfigured", err)
	}
	if _, err := Configure(in); !errdefs.IsFailedPrecondition(err) {
		t.Fatalf("Configure on configured archive err = %v, want failed precondition", err)
	}
	if len(in.Archive.Mappings) != 1 {
		t.Fatalf("len(Mappings) = %d, want 1", len(in.Archive.Mappings))
	}
}

func TestApplyWithoutArchive(t *testing.T) {
	plan, err := Configure(Input{Component: "mylib"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := plan.Apply(nil, nil); !errors.Is(err, ErrNoArchive) {
		t.Fatalf("err = %v, want ErrNoArchive", err)
	}
}
