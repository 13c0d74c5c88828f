package internal

import (
	"log/slog"
	"strconv"
	"sync/atomic"
)

var (
	quietMode   atomic.Bool // Suppresses informational output.
	debugMode   atomic.Bool // Enables debug output.
	verboseMode atomic.Bool // Adds source locations to log records.
)

// Seeds the output modes from linker flags.
//
// Values that fail to parse as booleans leave the mode disabled.
func init() {
	quietMode.Store(parseFlag(rawQuiet))
	debugMode.Store(parseFlag(rawDebug))
	verboseMode.Store(parseFlag(rawVerbose))
}

func parseFlag(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}

// Enables or disables quiet mode.
func SetQuiet(enabled bool) {
	quietMode.Store(enabled)
}

// Returns true if quiet mode is enabled.
func IsQuiet() bool {
	return quietMode.Load()
}

// Enables or disables debug mode.
func SetDebug(enabled bool) {
	debugMode.Store(enabled)
}

// Returns true if debug mode is enabled.
func IsDebug() bool {
	return debugMode.Load()
}

// Enables or disables verbose logging.
func SetVerbose(enabled bool) {
	verboseMode.Store(enabled)
}

// Returns true if verbose logging is enabled.
func IsVerbose() bool {
	return verboseMode.Load()
}

// Returns the log level implied by the current modes.
//
// Debug wins over quiet when both are set.
func LogLevel() slog.Level {
	switch {
	case IsDebug():
		return slog.LevelDebug
	case IsQuiet():
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
