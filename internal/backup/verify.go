package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/thoreinstein/snapback/internal/errors"
	"github.com/thoreinstein/snapback/internal/logging"
)

// Problem names a source entry whose copy does not match.
type Problem struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Report is the result of comparing a backup root against its source.
type Report struct {
	Checked  int       `json:"checked"`
	Problems []Problem `json:"problems,omitempty"`
}

// OK reports whether every checked entry matched.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

// Verify walks source the way TreeCopier does and checks that each regular
// file exists under root with the same SHA-256 digest and permission bits.
// Entries the copier would skip are ignored. Entries that cannot be read on
// the source side are reported as problems.
func Verify(source, root string, logger *slog.Logger) (*Report, error) {
	logger = logging.OrDiscard(logger)

	info, err := os.Stat(source)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "stat %s", source), errors.ErrInvalidSource)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(errors.ErrInvalidSource, "%s is not a directory", source)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, errors.Wrapf(ErrNoBackupsFound, "%s is not a backup directory", root)
	}

	report := &Report{}
	problem := func(rel, reason string) {
		logger.Warn("mismatch", "path", rel, "reason", reason)
		report.Problems = append(report.Problems, Problem{Path: rel, Reason: reason})
	}

	err = filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		rel, relErr := filepath.Rel(source, path)
		if relErr != nil {
			return relErr
		}
		if err != nil {
			problem(rel, err.Error())
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		dest := filepath.Join(root, rel)
		switch {
		case d.IsDir():
			report.Checked++
			if di, err := os.Stat(dest); err != nil || !di.IsDir() {
				problem(rel, "directory missing")
				return fs.SkipDir
			}
		case d.Type().IsRegular():
			report.Checked++
			if reason := compareFile(path, dest); reason != "" {
				problem(rel, reason)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walking source directory")
	}

	logger.Debug("verified backup", "root", root, "checked", report.Checked, "problems", len(report.Problems))
	return report, nil
}

func compareFile(src, dest string) string {
	si, err := os.Stat(src)
	if err != nil {
		return "source unreadable"
	}
	di, err := os.Stat(dest)
	if err != nil {
		return "missing"
	}
	if !di.Mode().IsRegular() {
		return "not a regular file"
	}

	srcHash, err := hashFile(src)
	if err != nil {
		return "source unreadable"
	}
	destHash, err := hashFile(dest)
	if err != nil {
		return "copy unreadable"
	}
	if srcHash != destHash {
		return "content differs"
	}
	if si.Mode()&permBits != di.Mode()&permBits {
		return "permissions differ"
	}
	return ""
}

// hashFile computes the SHA256 hash of a file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening file")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, "reading file")
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
