package commands

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/thoreinstein/snapback/internal/config"
	"github.com/thoreinstein/snapback/internal/target"
)

// testEnv isolates a command run from the user's settings and default
// target file.
type testEnv struct {
	dir        string
	settings   string
	targetFile string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	e := &testEnv{
		dir:        dir,
		settings:   filepath.Join(dir, "settings.yaml"),
		targetFile: filepath.Join(dir, "backup_tool.conf"),
	}
	e.writeSettings(t, "version: 1\nsort_entries: true\n")

	origStore := newStore
	origSettings := settings
	newStore = func(logger *slog.Logger) (*target.Store, error) {
		return target.NewStore(
			target.WithPath(e.targetFile),
			target.WithFallback(filepath.Join(dir, "fallback")),
			target.WithLogger(logger),
		)
	}
	t.Cleanup(func() {
		newStore = origStore
		settings = origSettings
		config.Init()
	})
	return e
}

func (e *testEnv) writeSettings(t *testing.T, content string) {
	t.Helper()
	if err := os.WriteFile(e.settings, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func (e *testEnv) setDefaultTarget(t *testing.T, dir string) {
	t.Helper()
	if err := os.WriteFile(e.targetFile, []byte(dir), 0o644); err != nil {
		t.Fatal(err)
	}
}

// run executes the root command with args and returns stdout and stderr.
func (e *testEnv) run(args ...string) (string, string, error) {
	resetFlags()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--settings", e.settings}, args...))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags restores flag variables between executions of the shared
// command tree.
func resetFlags() {
	verbosity = 0
	quiet = false
	logFormat = ""
	logFile = ""
	settingsPath = ""
	targetFlag = ""
	listJSON = false
	listInteractive = false
	verifyJSON = false
	configFormat = "yaml"
}

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatal(err)
	}
}

func mustResolve(t *testing.T, dir string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	return resolved
}
