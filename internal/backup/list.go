package backup

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/thoreinstein/snapback/internal/errors"
)

// Entry is one timestamped root found under a target base.
type Entry struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary describes the contents of a backup root.
type Summary struct {
	Files int   `json:"files"`
	Dirs  int   `json:"dirs"`
	Size  int64 `json:"size"`
}

// List returns the timestamped roots under targetBase, newest first.
// Directories whose names do not parse as timestamps are ignored.
func List(targetBase string) ([]Entry, error) {
	if targetBase == "" {
		return nil, ErrNoTarget
	}

	entries, err := os.ReadDir(targetBase)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrap(err, "reading target directory")
	}

	backups := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		created, ok := ParseName(e.Name())
		if !ok {
			continue
		}
		backups = append(backups, Entry{
			Name:      e.Name(),
			Path:      filepath.Join(targetBase, e.Name()),
			CreatedAt: created,
		})
	}

	if len(backups) == 0 {
		return nil, ErrNoBackupsFound
	}

	slices.SortFunc(backups, func(a, b Entry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return backups, nil
}

// Measure counts the regular files and directories below root and sums
// the file sizes. root itself is not counted.
func Measure(root string) (Summary, error) {
	var s Summary
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		switch {
		case d.IsDir():
			s.Dirs++
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return err
			}
			s.Files++
			s.Size += info.Size()
		}
		return nil
	})
	if err != nil {
		return s, errors.Wrapf(err, "measuring %s", root)
	}
	return s, nil
}
