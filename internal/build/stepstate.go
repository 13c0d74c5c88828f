package build

import (
	"maps"
	"path/filepath"
	"slices"
)

// Default shell used for command steps when no shell modifier has been set.
const defaultShell = "/bin/sh"

// Shell, working directory, and environment overrides.
type modifiers struct {
	Shell   string
	Workdir string
	Env     map[string]string
}

// Tracks the modifiers in effect for command steps.
//
// Project-wide defaults update the state permanently via apply. Each command
// step reads its effective values via resolve without modifying the state.
type stepState struct {
	shell   string
	workdir string
	env     map[string]string
}

// Creates a new [stepState] rooted at the given directory.
func newStepState(root string) *stepState {
	return &stepState{
		shell:   defaultShell,
		workdir: root,
		env:     make(map[string]string),
	}
}

// Persists modifiers into the state.
//
// Empty fields leave the current value alone. Environment entries are merged.
func (s *stepState) apply(m modifiers) {
	if m.Shell != "" {
		s.shell = m.Shell
	}
	if m.Workdir != "" {
		s.workdir = s.join(m.Workdir)
	}
	maps.Copy(s.env, m.Env)
}

// Returns a new [stepState] with step modifiers overlaid on the persistent
// state. The receiver is not modified.
func (s *stepState) resolve(m modifiers) *stepState {
	resolved := &stepState{
		shell:   s.shell,
		workdir: s.workdir,
		env:     make(map[string]string, len(s.env)+len(m.Env)),
	}
	maps.Copy(resolved.env, s.env)
	maps.Copy(resolved.env, m.Env)

	if m.Shell != "" {
		resolved.shell = m.Shell
	}
	if m.Workdir != "" {
		resolved.workdir = s.join(m.Workdir)
	}

	return resolved
}

// Formats the environment as sorted "key=value" strings, appended to base.
//
// Later entries win in os/exec, so the state overrides base.
func (s *stepState) environ(base []string) []string {
	env := slices.Clone(base)
	for _, k := range slices.Sorted(maps.Keys(s.env)) {
		env = append(env, k+"="+s.env[k])
	}
	return env
}

// Resolves a workdir against the current one.
func (s *stepState) join(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(s.workdir, dir)
}
