package internal

import (
	"log/slog"
	"strings"
	"testing"
)

func withVariables(t *testing.T, v, s, c string) {
	t.Helper()
	oldV, oldS, oldC := version, stage, gitCommit
	version, stage, gitCommit = v, s, c
	t.Cleanup(func() { version, stage, gitCommit = oldV, oldS, oldC })
}

func TestVersionStringLocal(t *testing.T) {
	withVariables(t, "1.2.3", "", "abc123")
	if got := VersionString(); got != defaultLocalBuild {
		t.Fatalf("VersionString() = %q, want %q", got, defaultLocalBuild)
	}
}

func TestVersionStringPipeline(t *testing.T) {
	withVariables(t, "V1.2.3", "main", "abc123")
	got := VersionString()
	if !strings.HasPrefix(got, "1.2.3 abc123 [") {
		t.Fatalf("VersionString() = %q, want 1.2.3 abc123 [...]", got)
	}

	withVariables(t, "1.2.3", "Beta", "abc123")
	if got := VersionString(); !strings.HasPrefix(got, "1.2.3+beta abc123") {
		t.Fatalf("VersionString() = %q, want 1.2.3+beta prefix", got)
	}
}

func TestLogLevel(t *testing.T) {
	t.Cleanup(func() {
		SetDebug(false)
		SetQuiet(false)
	})

	SetDebug(false)
	SetQuiet(false)
	if LogLevel() != slog.LevelInfo {
		t.Fatalf("LogLevel() = %v, want info", LogLevel())
	}

	SetQuiet(true)
	if LogLevel() != slog.LevelWarn {
		t.Fatalf("LogLevel() = %v, want warn", LogLevel())
	}

	SetDebug(true)
	if LogLevel() != slog.LevelDebug {
		t.Fatalf("LogLevel() = %v, want debug when both are set", LogLevel())
	}
}
