package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/cruciblehq/uberjni/internal"
	"github.com/cruciblehq/uberjni/internal/build"
	"github.com/cruciblehq/uberjni/internal/manifest"
	"github.com/cruciblehq/uberjni/internal/paths"
)

// Represents the root command.
var RootCmd struct {
	Quiet    bool       `short:"q" help:"Suppress informational output."`
	Verbose  bool       `short:"v" help:"Enable verbose output."`
	Debug    bool       `short:"d" help:"Enable debug output."`
	Manifest string     `short:"f" help:"Manifest to load. Defaults to uberjni.yaml, uberjni.yml, or uberjni.toml in the working directory." type:"path" placeholder:"PATH"`
	Plan     PlanCmd    `cmd:"" help:"Show how platform binaries would be merged."`
	Merge    MergeCmd   `cmd:"" help:"Merge platform binaries into the primary archive."`
	Version  VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Merges per-platform JNI libraries into a single archive."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Creates a logger writing to stderr at the level implied by the current
// output modes.
func NewLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     internal.LogLevel(),
		AddSource: internal.IsVerbose(),
	})
	return slog.New(handler).WithGroup(internal.Name)
}

// Folds CLI flags into the output modes and replaces the global logger.
func configureLogger() {
	if RootCmd.Debug {
		internal.SetDebug(true)
	}
	if RootCmd.Quiet {
		internal.SetQuiet(true)
	}
	if RootCmd.Verbose {
		internal.SetVerbose(true)
	}
	slog.SetDefault(NewLogger())
}

// Loads the manifest selected by flags and creates its project.
func loadProject() (*build.Project, error) {
	path := RootCmd.Manifest
	if path == "" {
		path = paths.Manifest(".")
	}

	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("manifest loaded", "path", path, "component", m.Component, "platforms", len(m.Platforms))

	return build.NewProject(m)
}
