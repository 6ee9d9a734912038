package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Exit codes for the snapback CLI.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid source, bad target, usage).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, permissions, etc.).
	ExitSystem = 2

	// ExitPartial indicates the backup ran but one or more entries failed to copy.
	ExitPartial = 3
)

// Sentinel errors for common failure conditions.
var (
	// ErrInvalidSource indicates the source is missing or not a directory.
	ErrInvalidSource = crdb.New("invalid source directory")

	// ErrInvalidTarget indicates a target directory could not be resolved.
	ErrInvalidTarget = crdb.New("invalid target directory")

	// ErrCreateRoot indicates the timestamped backup root could not be created.
	ErrCreateRoot = crdb.New("failed to create backup directory")

	// ErrConfigWrite indicates the default target file could not be written.
	ErrConfigWrite = crdb.New("failed to write default target")

	// ErrPartialBackup indicates some entries failed during an otherwise completed run.
	ErrPartialBackup = crdb.New("backup completed with errors")

	// ErrInvalidConfig indicates settings validation failed.
	ErrInvalidConfig = crdb.New("invalid configuration")
)

// New, Newf, Wrap, Wrapf, Mark, Is and As forward to cockroachdb/errors so callers
// need a single errors import.
var (
	New    = crdb.New
	Newf   = crdb.Newf
	Wrap   = crdb.Wrap
	Wrapf  = crdb.Wrapf
	Mark   = crdb.Mark
	Is     = crdb.Is
	As     = crdb.As
	Unwrap = crdb.Unwrap
)

// ExitError wraps an error with an exit code and optional suggestion for the CLI.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable hint for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// NewPartialError creates an ExitError reporting a partially successful backup.
func NewPartialError(failed int) *ExitError {
	return &ExitError{
		Err:        crdb.Wrapf(ErrPartialBackup, "%d entries failed", failed),
		Code:       ExitPartial,
		Suggestion: "Re-run with -v to see which entries failed",
	}
}

// Error returns the message of the underlying error, or a generic message
// naming the exit code when there is none.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for err. Errors that are not an
// ExitError map to ExitSystem; nil maps to ExitSuccess.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if crdb.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitSystem
}
