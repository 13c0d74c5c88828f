package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cruciblehq/uberjni/internal/build"
)

// Represents the 'uberjni merge' command.
type MergeCmd struct {
	Entries bool `short:"e" help:"List archive entries with their digests."`
}

// Executes the merge command.
//
// Applies the merge to the project, then runs the primary archive step and
// everything it depends on. Per-variant archives are not written.
func (c *MergeCmd) Run(ctx context.Context) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	plan, err := p.Merge()
	if err != nil {
		return err
	}
	for _, t := range plan.Omitted {
		slog.Warn("no prebuilt runtime files, platform left out of the archive", "platform", t.String())
	}

	result, err := p.Execute(ctx, p.Archive.Step)
	if err != nil {
		return err
	}

	printArchive(os.Stdout, result.Archives[p.Archive.Step], c.Entries)
	return nil
}

// Writes the archive path and digest, optionally followed by its entries.
func printArchive(w io.Writer, archive *build.ArchiveResult, entries bool) {
	if archive == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", archive.Digest, archive.Path)
	if !entries {
		return
	}
	for _, e := range archive.Entries {
		fmt.Fprintf(w, "  %s %8d %s\n", e.Digest.Encoded()[:12], e.Size, e.Name)
	}
}
