// Package editor launches the user's preferred text editor.
package editor

import (
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/snapback/internal/errors"
)

// Detect returns the editor command line to use.
// Fallback chain: $EDITOR → $VISUAL → nano → vi
func Detect() string {
	if editor := strings.TrimSpace(os.Getenv("EDITOR")); editor != "" {
		return editor
	}
	if visual := strings.TrimSpace(os.Getenv("VISUAL")); visual != "" {
		return visual
	}
	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}
	return "vi"
}

// Command builds the command that opens path. Editor settings may carry
// arguments, as in EDITOR="code --wait".
func Command(path string) *exec.Cmd {
	fields := strings.Fields(Detect())
	args := append(fields[1:], path)
	return exec.Command(fields[0], args...)
}

// Open runs the editor on path and waits for it to exit.
func Open(path string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := Command(path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", cmd.Path)
	}
	return nil
}
