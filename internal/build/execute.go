package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cruciblehq/uberjni/internal/merge"
	"github.com/cruciblehq/uberjni/internal/paths"
)

// Returned after a successful execution.
type Result struct {
	Ran      []merge.StepID                  // Steps executed, in order.
	Skipped  []merge.StepID                  // Disabled steps passed over.
	Archives map[merge.StepID]*ArchiveResult // Archives written, by step.
}

// Executes the goal step and everything it depends on.
//
// Steps run one at a time in dependency order. Disabled steps are skipped.
// Cancelling the context stops execution before the next step and kills a
// running command. The first failing step aborts execution.
func (p *Project) Execute(ctx context.Context, goal merge.StepID) (*Result, error) {
	schedule, err := p.Graph.Schedule(goal)
	if err != nil {
		return nil, err
	}

	state := newStepState(p.Root)
	state.apply(p.defaults)

	slog.Info("executing build", "component", p.Component, "goal", goal, "steps", len(schedule))

	result := &Result{Archives: make(map[merge.StepID]*ArchiveResult)}
	for _, step := range schedule {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if step.Disabled {
			slog.Debug("step skipped", "step", step.ID)
			result.Skipped = append(result.Skipped, step.ID)
			continue
		}

		if err := p.executeStep(ctx, step, state, result); err != nil {
			return nil, fmt.Errorf("%w: step %s: %w", ErrBuild, step.ID, err)
		}
		result.Ran = append(result.Ran, step.ID)
	}

	return result, nil
}

// Dispatches a single step by kind.
func (p *Project) executeStep(ctx context.Context, step *Step, state *stepState, result *Result) error {
	switch step.Kind {
	case StepCommand:
		return runCommand(ctx, step, state)

	case StepArchive:
		slog.Info("writing archive", "step", step.ID, "output", step.Archive.output)
		archive, err := writeArchive(step.Archive)
		if err != nil {
			return err
		}
		result.Archives[step.ID] = archive
		return nil

	default:
		slog.Debug("nothing to run", "step", step.ID)
		return nil
	}
}

// Runs a command step through its shell and checks its outputs exist.
func runCommand(ctx context.Context, step *Step, state *stepState) error {
	resolved := state.resolve(step.Modifiers)

	for _, out := range step.Outputs {
		if err := os.MkdirAll(filepath.Dir(out), paths.DefaultDirMode); err != nil {
			return fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
		}
	}

	slog.Debug("run", "command", step.Run, "shell", resolved.shell, "workdir", resolved.workdir)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, resolved.shell, "-c", step.Run)
	cmd.Dir = resolved.workdir
	cmd.Env = resolved.environ(os.Environ())
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if len(out) > 0 {
		slog.Debug("command output", "step", step.ID, "stdout", strings.TrimSpace(string(out)))
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: exit code %d: %s", ErrCommandFailed, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}

	for _, out := range step.Outputs {
		if _, err := os.Stat(out); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingOutput, out)
		}
	}
	return nil
}
