package build

import (
	"fmt"
	"slices"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/cruciblehq/uberjni/internal/merge"
)

// Kinds of steps the graph knows how to execute.
type StepKind int

const (
	StepCommand StepKind = iota // Runs a shell command.
	StepArchive                 // Writes a zip archive.
	StepNoop                    // Stands in for work done elsewhere.
)

// A node in the build graph.
type Step struct {
	ID        merge.StepID   // Unique step name.
	Kind      StepKind       // What executing the step does.
	Run       string         // Shell command, for command steps.
	Modifiers modifiers      // Shell, workdir, and env overrides, for command steps.
	Outputs   []string       // Files the step must leave behind.
	Archive   *archiveSpec   // Archive contents, for archive steps.
	DependsOn []merge.StepID // Steps that must complete first.
	Disabled  bool           // Disabled steps are skipped, their dependents still run.
}

// A set of steps and the ordering edges between them.
//
// A graph is built and configured on one goroutine, then executed.
type Graph struct {
	steps map[merge.StepID]*Step
	order []merge.StepID // Insertion order, the tie-breaker for scheduling.
}

// Creates an empty [Graph].
func NewGraph() *Graph {
	return &Graph{steps: make(map[merge.StepID]*Step)}
}

// Adds a step. Step names must be unique.
func (g *Graph) Add(s *Step) error {
	if s.ID == "" {
		return fmt.Errorf("%w: empty step name: %w", ErrUnknownStep, errdefs.ErrInvalidArgument)
	}
	if _, ok := g.steps[s.ID]; ok {
		return fmt.Errorf("%w: %s: %w", ErrDuplicateStep, s.ID, errdefs.ErrAlreadyExists)
	}
	g.steps[s.ID] = s
	g.order = append(g.order, s.ID)
	return nil
}

// Returns the step with the given name.
func (g *Graph) Step(id merge.StepID) (*Step, bool) {
	s, ok := g.steps[id]
	return s, ok
}

// Returns all steps in insertion order.
func (g *Graph) Steps() []*Step {
	steps := make([]*Step, 0, len(g.order))
	for _, id := range g.order {
		steps = append(steps, g.steps[id])
	}
	return steps
}

// Marks a step as disabled.
func (g *Graph) Disable(id merge.StepID) error {
	s, err := g.lookup(id)
	if err != nil {
		return err
	}
	s.Disabled = true
	return nil
}

// Declares that step id runs after step on. Repeated edges are ignored.
func (g *Graph) DependOn(id, on merge.StepID) error {
	s, err := g.lookup(id)
	if err != nil {
		return err
	}
	if _, err := g.lookup(on); err != nil {
		return err
	}
	if !slices.Contains(s.DependsOn, on) {
		s.DependsOn = append(s.DependsOn, on)
	}
	return nil
}

// Returns the goal and everything it depends on, dependencies first.
//
// Ties are broken by insertion order, so the schedule is deterministic.
// Disabled steps are included; the executor skips them.
func (g *Graph) Schedule(goal merge.StepID) ([]*Step, error) {
	if _, err := g.lookup(goal); err != nil {
		return nil, err
	}

	// Collect the goal's closure.
	closure := make(map[merge.StepID]bool)
	pending := []merge.StepID{goal}
	for len(pending) > 0 {
		id := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if closure[id] {
			continue
		}
		s, err := g.lookup(id)
		if err != nil {
			return nil, err
		}
		closure[id] = true
		pending = append(pending, s.DependsOn...)
	}

	// Kahn's algorithm over the closure.
	indeg := make(map[merge.StepID]int, len(closure))
	dependents := make(map[merge.StepID][]merge.StepID, len(closure))
	for id := range closure {
		for _, dep := range g.steps[id].DependsOn {
			indeg[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	schedule := make([]*Step, 0, len(closure))
	done := make(map[merge.StepID]bool, len(closure))
	for len(schedule) < len(closure) {
		progressed := false
		for _, id := range g.order {
			if !closure[id] || done[id] || indeg[id] > 0 {
				continue
			}
			done[id] = true
			progressed = true
			schedule = append(schedule, g.steps[id])
			for _, d := range dependents[id] {
				indeg[d]--
			}
			break
		}
		if !progressed {
			return nil, g.cycleError(closure, done)
		}
	}

	return schedule, nil
}

func (g *Graph) lookup(id merge.StepID) (*Step, error) {
	s, ok := g.steps[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnknownStep, id, errdefs.ErrNotFound)
	}
	return s, nil
}

func (g *Graph) cycleError(closure, done map[merge.StepID]bool) error {
	var stuck []string
	for _, id := range g.order {
		if closure[id] && !done[id] {
			stuck = append(stuck, string(id))
		}
	}
	return fmt.Errorf("%w among %s: %w", ErrCycle, strings.Join(stuck, ", "), errdefs.ErrFailedPrecondition)
}
