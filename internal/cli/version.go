package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cruciblehq/uberjni/internal"
)

// Represents the 'uberjni version' command.
type VersionCmd struct {
	Short bool `short:"s" help:"Print the version string alone."`
}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	printVersion(os.Stdout, c.Short)
	return nil
}

// Writes "<name> <version>", or the version alone when short is set.
func printVersion(w io.Writer, short bool) {
	if short {
		fmt.Fprintln(w, internal.VersionString())
		return
	}
	fmt.Fprintf(w, "%s %s\n", internal.Name, internal.VersionString())
}
