// Package target persists the default backup target: a single absolute path
// kept in a plain-text file beneath the user's home directory.
package target

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/thoreinstein/snapback/internal/errors"
	"github.com/thoreinstein/snapback/internal/logging"
	"github.com/thoreinstein/snapback/internal/paths"
	"github.com/thoreinstein/snapback/pkg/fileutil"
)

// DefaultFallback is the target used when no default has been persisted.
const DefaultFallback = "/media/pi/piBackup"

// maxLine bounds how much of the file is read; longer content is treated
// like an unreadable file.
const maxLine = 4096

// Store reads and writes the persisted default target.
type Store struct {
	path     string
	fallback string
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithPath overrides the default-target file location.
func WithPath(path string) Option {
	return func(s *Store) {
		s.path = path
	}
}

// WithFallback sets the target returned when nothing is persisted.
func WithFallback(fallback string) Option {
	return func(s *Store) {
		if fallback != "" {
			s.fallback = fallback
		}
	}
}

// WithLogger sets the logger for advisory messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates a Store. Without WithPath the file is
// <home>/.config/backup_tool.conf, which requires a resolvable home directory.
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{fallback: DefaultFallback}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrDiscard(s.logger)

	if s.path == "" {
		p, err := paths.DefaultTargetFile()
		if err != nil {
			return nil, errors.Wrap(err, "locating default target file")
		}
		s.path = p
	}
	return s, nil
}

// Path returns the location of the default-target file.
func (s *Store) Path() string {
	return s.path
}

// Fallback returns the built-in target used when no default is persisted.
func (s *Store) Fallback() string {
	return s.fallback
}

// ReadDefaultTarget returns the persisted default target. A missing,
// unreadable or empty file is not an error: the fallback is returned and a
// warning is logged. The value is not validated.
func (s *Store) ReadDefaultTarget() string {
	s.logger.Debug("reading default target", "file", s.path)

	line, err := fileutil.ReadFirstLine(s.path, maxLine)
	if err != nil || line == "" {
		s.logger.Warn("config file not found or empty, using default target directory",
			"file", s.path, "target", s.fallback)
		if err != nil {
			s.logger.Debug("default target unavailable", "err", err)
		}
		return s.fallback
	}

	s.logger.Debug("default target read", "target", line)
	return line
}

// WriteDefaultTarget replaces the file contents with target. The parent
// directory is created when missing.
func (s *Store) WriteDefaultTarget(target string) error {
	dir := filepath.Dir(s.path)
	s.logger.Debug("ensuring config directory exists", "dir", dir)

	if err := os.MkdirAll(dir, paths.DefaultDirPerm); err != nil {
		return errors.Mark(errors.Wrapf(err, "creating %s", dir), errors.ErrConfigWrite)
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "opening default target file"), errors.ErrConfigWrite)
	}
	if _, err := f.WriteString(target); err != nil {
		f.Close()
		return errors.Mark(errors.Wrap(err, "writing default target file"), errors.ErrConfigWrite)
	}
	if err := f.Close(); err != nil {
		return errors.Mark(errors.Wrap(err, "closing default target file"), errors.ErrConfigWrite)
	}

	s.logger.Info("updated default backup directory", "target", target)
	return nil
}
