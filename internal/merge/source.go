package merge

// Where a variant's binary comes from.
//
// The interface is sealed. The only implementations are [LocalBuildOutput]
// and [PrebuiltRuntimeFiles], and callers are expected to switch on them.
type BinarySource interface {

	// Returns the files to package. For a local build the file may not
	// exist until the producing step has run.
	Files() []string

	isBinarySource()
}

// A single file produced by a link step on the build machine.
type LocalBuildOutput struct {
	Step StepID // Step that writes File.
	File string // Linked shared library.
}

// Files supplied from outside the build, such as a cross-build on another
// machine.
type PrebuiltRuntimeFiles struct {
	Paths []string
}

func (s LocalBuildOutput) Files() []string {
	return []string{s.File}
}

func (s PrebuiltRuntimeFiles) Files() []string {
	return s.Paths
}

func (LocalBuildOutput) isBinarySource()     {}
func (PrebuiltRuntimeFiles) isBinarySource() {}

// Selects the binary source for a variant.
//
// Host variants use the output of their own link step. Every other variant
// uses its prebuilt runtime files, which may be empty.
func SelectSource(v Variant) BinarySource {
	if v.Platform.IsHost() {
		return LocalBuildOutput{Step: v.LinkStep, File: v.LinkedFile}
	}
	return PrebuiltRuntimeFiles{Paths: append([]string(nil), v.RuntimeFiles...)}
}
