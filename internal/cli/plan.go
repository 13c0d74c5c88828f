package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cruciblehq/uberjni/internal/merge"
)

// Represents the 'uberjni plan' command.
type PlanCmd struct{}

// Executes the plan command.
//
// Resolves every platform and prints the resulting plan without running any
// step or writing any archive.
func (c *PlanCmd) Run(ctx context.Context) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	plan, err := p.Plan()
	if err != nil {
		return err
	}

	printPlan(os.Stdout, p.Archive.Step, plan)
	return nil
}

// Writes a human-readable summary of a plan.
func printPlan(w io.Writer, archive merge.StepID, plan *merge.Plan) {
	fmt.Fprintf(w, "component %s, archive step %s\n", plan.Component, archive)

	for _, r := range plan.Variants {
		fmt.Fprintf(w, "  %-16s %s\n", r.Target, describeVariant(r, plan))
	}

	if len(plan.Disabled) > 0 {
		fmt.Fprintf(w, "disabled: %s\n", joinSteps(plan.Disabled))
	}
	if len(plan.DependsOn) > 0 {
		fmt.Fprintf(w, "after: %s\n", joinSteps(plan.DependsOn))
	}
	for _, r := range plan.Removals {
		fmt.Fprintf(w, "unpublish: %s/%s\n", r.Group, r.Artifact.Name)
	}
}

// Describes where a platform's binary comes from and where it goes.
func describeVariant(r merge.Resolved, plan *merge.Plan) string {
	for _, t := range plan.Omitted {
		if t.Equal(r.Target) {
			return "prebuilt, no files, omitted"
		}
	}

	into, _ := merge.ResourceDir(r.Variant.ResourcePath)

	switch src := merge.SelectSource(r.Variant).(type) {
	case merge.LocalBuildOutput:
		return fmt.Sprintf("host, %s -> %s/", src.Step, into)
	case merge.PrebuiltRuntimeFiles:
		return fmt.Sprintf("prebuilt, %d file(s) -> %s/", len(src.Paths), into)
	default:
		return "unknown source"
	}
}

func joinSteps(ids []merge.StepID) string {
	s := make([]string, 0, len(ids))
	for _, id := range ids {
		s = append(s, string(id))
	}
	return strings.Join(s, ", ")
}
