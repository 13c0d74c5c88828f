package main

import (
	"log/slog"
	"os"

	"github.com/cruciblehq/uberjni/internal"
	"github.com/cruciblehq/uberjni/internal/cli"
)

// The entry point for uberjni.
//
// Initializes logging from build-time defaults, records startup information,
// and executes the root command. Exits with a non-zero code on error.
func main() {
	slog.SetDefault(cli.NewLogger())

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("uberjni is running",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
