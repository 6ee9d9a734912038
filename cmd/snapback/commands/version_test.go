package commands

import (
	"runtime"
	"strings"
	"testing"

	"github.com/thoreinstein/snapback/cmd"
)

func TestVersionCommand_Output(t *testing.T) {
	e := newTestEnv(t)

	output, _, err := e.run("version")
	if err != nil {
		t.Fatalf("version command should not return an error, got: %v", err)
	}

	tests := []struct {
		name     string
		contains string
	}{
		{"version header", "snapback version " + cmd.Version},
		{"commit field", "commit: " + cmd.Commit},
		{"built field", "built:  " + cmd.Date},
		{"go field", "go:     " + runtime.Version()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(output, tt.contains) {
				t.Errorf("version output missing %q\nGot:\n%s", tt.contains, output)
			}
		})
	}

	if lines := strings.Split(strings.TrimSpace(output), "\n"); len(lines) != 4 {
		t.Errorf("version output has %d lines, want 4\n%s", len(lines), output)
	}
}

func TestVersionCommand_IgnoresBadSettings(t *testing.T) {
	e := newTestEnv(t)
	e.writeSettings(t, "chunk_size: 0\n")

	if _, _, err := e.run("version"); err != nil {
		t.Errorf("version should run with invalid settings, got: %v", err)
	}
}

func TestVersionCommand_CommandMetadata(t *testing.T) {
	if versionCmd.Use != "version" {
		t.Errorf("versionCmd.Use = %q, want %q", versionCmd.Use, "version")
	}
	if versionCmd.Short == "" {
		t.Error("versionCmd.Short should not be empty")
	}
	if versionCmd.Long == "" {
		t.Error("versionCmd.Long should not be empty")
	}
}
