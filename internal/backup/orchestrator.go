package backup

import (
	"io/fs"
	"log/slog"
	"os"

	"github.com/thoreinstein/snapback/internal/errors"
	"github.com/thoreinstein/snapback/internal/logging"
	"github.com/thoreinstein/snapback/internal/paths"
)

// DefaultTargetStore reads and persists the default target base directory.
type DefaultTargetStore interface {
	ReadDefaultTarget() string
	WriteDefaultTarget(path string) error
}

// Orchestrator runs a backup: it resolves the target, creates the
// timestamped root and copies the source tree into it.
type Orchestrator struct {
	store       DefaultTargetStore
	clock       Clock
	chunkSize   int
	sortEntries bool
	logger      *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock sets the clock used to name backup roots.
func WithClock(c Clock) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithChunkSize sets the file streaming buffer size.
func WithChunkSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithSortEntries makes directory traversal visit entries in name order.
func WithSortEntries(sorted bool) Option {
	return func(o *Orchestrator) {
		o.sortEntries = sorted
	}
}

// WithLogger sets the logger for progress and per-entry warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// NewOrchestrator creates an Orchestrator backed by store.
func NewOrchestrator(store DefaultTargetStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:     store,
		clock:     SystemClock{},
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.OrDiscard(o.logger)
	return o
}

// Run executes req.
//
// With OverrideDefault set, req.TargetBase is persisted as the new default
// and Run returns StatusConfigUpdated without copying anything.
//
// Otherwise the source must be an existing directory and the timestamped
// root must be creatable; either failure is returned as an error before any
// copying starts. Per-entry failures do not produce an error: they are
// reported through Result.Outcomes and StatusPartial.
func (o *Orchestrator) Run(req Request) (*Result, error) {
	if req.OverrideDefault {
		return o.updateDefault(req.TargetBase)
	}

	targetBase := req.TargetBase
	if targetBase == "" {
		o.logger.Debug("reading default backup directory")
		targetBase = o.store.ReadDefaultTarget()
	}

	if err := validateSource(req.Source); err != nil {
		return nil, err
	}
	o.logger.Debug("validated source directory", "source", req.Source)

	root, err := o.createRoot(targetBase)
	if err != nil {
		return nil, err
	}

	o.logger.Info("backing up", "source", req.Source, "root", root)
	files := NewFileCopier(o.chunkSize, o.logger)
	outcomes := NewTreeCopier(files, o.sortEntries, o.logger).CopyTree(req.Source, root)

	result := &Result{
		Status:     statusOf(outcomes),
		TargetBase: targetBase,
		Root:       root,
		Outcomes:   outcomes,
	}
	c := result.Counts()
	o.logger.Info("backup finished", "status", result.Status,
		"files", c.Files, "dirs", c.Directories, "skipped", c.Skipped, "failed", c.Failed)
	return result, nil
}

func (o *Orchestrator) updateDefault(targetBase string) (*Result, error) {
	if targetBase == "" {
		return nil, errors.Wrap(ErrNoTarget, "updating default target")
	}
	o.logger.Debug("updating default backup directory", "target", targetBase)
	if err := o.store.WriteDefaultTarget(targetBase); err != nil {
		return nil, err
	}
	return &Result{Status: StatusConfigUpdated, TargetBase: targetBase}, nil
}

func (o *Orchestrator) createRoot(targetBase string) (string, error) {
	o.logger.Debug("creating timestamped backup directory", "target", targetBase)

	root, err := NewNamer(o.clock).Name(targetBase)
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "naming backup directory"), errors.ErrCreateRoot)
	}

	if err := paths.EnsureDir(targetBase, paths.DefaultDirPerm); err != nil {
		return "", errors.Mark(errors.Wrap(err, "creating target directory"), errors.ErrCreateRoot)
	}

	if err := os.Mkdir(root, paths.DefaultDirPerm); err != nil {
		if !errors.Is(err, fs.ErrExist) {
			return "", errors.Mark(errors.Wrap(err, "creating backup directory"), errors.ErrCreateRoot)
		}
		info, statErr := os.Stat(root)
		if statErr != nil || !info.IsDir() {
			return "", errors.Mark(errors.Wrap(err, "creating backup directory"), errors.ErrCreateRoot)
		}
		o.logger.Warn("backup directory already exists, copying into it", "root", root)
	}
	return root, nil
}

func validateSource(source string) error {
	if source == "" {
		return errors.Wrap(errors.ErrInvalidSource, "no source directory given")
	}
	info, err := os.Stat(source)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "stat %s", source), errors.ErrInvalidSource)
	}
	if !info.IsDir() {
		return errors.Wrapf(errors.ErrInvalidSource, "%s is not a directory", source)
	}
	return nil
}
