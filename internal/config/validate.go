package config

import (
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/thoreinstein/snapback/internal/errors"
)

// MaxChunkSize bounds chunk_size.
const MaxChunkSize = 16 << 20

// Validation errors for settings fields.
var (
	// ErrVersionTooLow indicates the version field is below the minimum.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrNotAbsolute indicates a path value must be absolute.
	ErrNotAbsolute = errors.New("path must be absolute")

	// ErrOutOfRange indicates a numeric value outside its allowed range.
	ErrOutOfRange = errors.New("value out of range")

	// ErrNotInteger indicates a value that does not parse as an integer.
	ErrNotInteger = errors.New("value must be an integer")

	// ErrNotBool indicates a value that does not parse as a boolean.
	ErrNotBool = errors.New("value must be true or false")

	// ErrUnknownFormat indicates an unsupported log format.
	ErrUnknownFormat = errors.New("unknown log format")
)

// LogFormats lists the accepted log_format values.
var LogFormats = []string{"text", "json"}

// Validate checks Settings for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(s *Settings) []error {
	if s == nil {
		return []error{errors.New("settings are nil")}
	}

	var errs []error

	if s.Version < 1 {
		errs = append(errs, ErrVersionTooLow)
	}

	if err := validatePath(s.FallbackTarget); err != nil {
		errs = append(errs, &PathError{
			Field: KeyFallbackTarget,
			Path:  s.FallbackTarget,
			Err:   err,
		})
	}

	if s.ChunkSize < 1 || s.ChunkSize > MaxChunkSize {
		errs = append(errs, &ValueError{
			Field: KeyChunkSize,
			Value: strconv.Itoa(s.ChunkSize),
			Err:   ErrOutOfRange,
		})
	}

	if !slices.Contains(LogFormats, s.LogFormat) {
		errs = append(errs, &ValueError{
			Field: KeyLogFormat,
			Value: s.LogFormat,
			Err:   ErrUnknownFormat,
		})
	}

	return errs
}

// validatePath checks that a fallback target is a usable absolute path.
// It does not check that the path exists.
func validatePath(path string) error {
	if path == "" || strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}
	if !filepath.IsAbs(path) {
		return ErrNotAbsolute
	}
	return nil
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ValueError represents an error for a specific scalar field.
type ValueError struct {
	Field string
	Value string
	Err   error
}

func (e *ValueError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *ValueError) Unwrap() error {
	return e.Err
}
