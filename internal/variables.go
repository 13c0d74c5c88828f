package internal

import (
	"fmt"
	"runtime"
	"strings"
)

const (

	// Program name, used for logging groups, XDG subdirectories, and usage.
	Name = "uberjni"

	// Placeholder for a variable the build did not set.
	defaultUndefined = "(undefined)"

	// Version string of a build made outside the release pipeline.
	defaultLocalBuild = "(local)"

	// Stage omitted from version strings.
	mainBranch = "main"
)

// Set with -ldflags "-X github.com/cruciblehq/uberjni/internal.<name>=<value>".
var (
	version   = "" // Release version, e.g. "1.2.3" or "v1.2.3".
	stage     = "" // Branch the release was cut from, e.g. "main".
	gitCommit = "" // Commit hash.

	rawQuiet   = "false" // Default for quiet mode.
	rawDebug   = "false" // Default for debug mode.
	rawVerbose = "false" // Default for verbose logging.
)

// Returns the release version without a leading "v", or "(undefined)".
func Version() string {
	return strings.TrimPrefix(strings.ToLower(orUndefined(version)), "v")
}

// Returns the lowercased release stage, or "(undefined)".
func Stage() string {
	return strings.ToLower(orUndefined(stage))
}

// Returns the commit hash, or "(undefined)".
func GitCommit() string {
	return orUndefined(gitCommit)
}

// Returns the platform the binary was built for, as "os/arch".
func Arch() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Whether the binary was built outside the release pipeline, which sets
// version, stage, and commit together.
func IsLocal() bool {
	for _, v := range []string{version, stage, gitCommit} {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// Returns "<version>[+<stage>] <commit> [<os>/<arch>]", or "(local)" for
// local builds. The stage is left out for main.
func VersionString() string {
	if IsLocal() {
		return defaultLocalBuild
	}

	suffix := ""
	if s := Stage(); s != mainBranch {
		suffix = "+" + s
	}

	return fmt.Sprintf("%s%s %s [%s]", Version(), suffix, GitCommit(), Arch())
}

func orUndefined(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return defaultUndefined
	}
	return v
}
