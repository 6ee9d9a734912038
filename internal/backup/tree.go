package backup

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/thoreinstein/snapback/internal/errors"
	"github.com/thoreinstein/snapback/internal/logging"
	"github.com/thoreinstein/snapback/internal/paths"
)

// TreeCopier mirrors a directory tree, delegating regular files to a
// FileCopier. Failures are collected per entry and never stop the walk.
type TreeCopier struct {
	files       *FileCopier
	sortEntries bool
	logger      *slog.Logger
}

// NewTreeCopier returns a TreeCopier. With sortEntries set, entries are
// visited in name order instead of directory enumeration order.
func NewTreeCopier(files *FileCopier, sortEntries bool, logger *slog.Logger) *TreeCopier {
	if files == nil {
		files = NewFileCopier(DefaultChunkSize, logger)
	}
	return &TreeCopier{
		files:       files,
		sortEntries: sortEntries,
		logger:      logging.OrDiscard(logger),
	}
}

// CopyTree copies src into dest and returns one outcome per visited entry,
// depth-first with each directory reported before its children. dest may
// already exist. Symlinks, devices, sockets and pipes are skipped.
func (t *TreeCopier) CopyTree(src, dest string) []Outcome {
	var outcomes []Outcome
	t.copyDir(src, dest, &outcomes)
	return outcomes
}

func (t *TreeCopier) copyDir(src, dest string, outcomes *[]Outcome) {
	names, err := t.readNames(src)
	if err != nil && names == nil {
		t.failed(outcomes, src, dest, err, "could not open directory")
		return
	}
	t.logger.Log(context.Background(), logging.LevelTrace, "opened source directory", "dir", src)

	if err := os.Mkdir(dest, paths.DefaultDirPerm); err != nil && !errors.Is(err, fs.ErrExist) {
		t.failed(outcomes, src, dest, errors.Wrap(err, "creating directory"), "could not create destination directory")
		return
	}
	*outcomes = append(*outcomes, Outcome{Path: src, Dest: dest, Kind: KindDirectory})

	for _, name := range names {
		if name == "." || name == ".." {
			continue
		}
		t.copyEntry(filepath.Join(src, name), filepath.Join(dest, name), outcomes)
	}

	// entries listed before a read error were still copied above
	if err != nil {
		t.failed(outcomes, src, dest, err, "directory listing incomplete")
	}
	t.logger.Debug("finished processing directory", "dir", src)
}

func (t *TreeCopier) copyEntry(src, dest string, outcomes *[]Outcome) {
	info, err := os.Lstat(src)
	if err != nil {
		t.logger.Warn("could not stat entry", "path", src, "err", err)
		*outcomes = append(*outcomes, Outcome{
			Path: src, Dest: dest, Kind: KindSkipped,
			Err: errors.Wrap(err, "retrieving file metadata"),
		})
		return
	}

	mode := info.Mode()
	switch {
	case mode.IsDir():
		t.logger.Log(context.Background(), logging.LevelTrace, "found directory", "path", src)
		t.copyDir(src, dest, outcomes)
	case mode.IsRegular():
		t.logger.Log(context.Background(), logging.LevelTrace, "found file", "path", src)
		*outcomes = append(*outcomes, t.files.CopyFile(src, dest))
	default:
		t.logger.Warn("skipped unknown entry type", "path", src, "type", typeName(mode))
		*outcomes = append(*outcomes, Outcome{
			Path: src, Dest: dest, Kind: KindSkipped,
			Err: errors.Newf("unsupported entry type %s", typeName(mode)),
		})
	}
}

// readNames lists src, closing the handle before the caller recurses. A
// non-nil slice with a non-nil error means the listing stopped part way.
func (t *TreeCopier) readNames(src string) ([]string, error) {
	dir, err := os.Open(src)
	if err != nil {
		return nil, errors.Wrap(err, "opening directory")
	}
	defer dir.Close()

	info, err := dir.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "opening directory")
	}
	if !info.IsDir() {
		return nil, errors.Newf("opening directory: %s is not a directory", src)
	}

	entries, err := dir.ReadDir(-1)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if t.sortEntries {
		slices.Sort(names)
	}
	if err != nil {
		return names, errors.Wrap(err, "reading directory")
	}
	return names, nil
}

func (t *TreeCopier) failed(outcomes *[]Outcome, src, dest string, err error, msg string) {
	t.logger.Error(msg, "dir", src, "dest", dest, "err", err)
	*outcomes = append(*outcomes, Outcome{Path: src, Dest: dest, Kind: KindFailed, Err: err})
}

func typeName(mode fs.FileMode) string {
	switch {
	case mode&fs.ModeSymlink != 0:
		return "symlink"
	case mode&fs.ModeNamedPipe != 0:
		return "fifo"
	case mode&fs.ModeSocket != 0:
		return "socket"
	case mode&fs.ModeCharDevice != 0:
		return "char device"
	case mode&fs.ModeDevice != 0:
		return "device"
	default:
		return mode.Type().String()
	}
}
