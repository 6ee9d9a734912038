package backup

import (
	"github.com/thoreinstein/snapback/internal/errors"
)

// DefaultChunkSize is the buffer size used when streaming file contents.
const DefaultChunkSize = 4096

// Sentinel errors for backup operations.
var (
	// ErrPathTooLong indicates the timestamped root would exceed MaxPathLen.
	ErrPathTooLong = errors.New("backup path too long")

	// ErrInvalidTimestamp indicates the clock produced an unusable time.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrNoTarget indicates no target base directory was available.
	ErrNoTarget = errors.New("no target directory")

	// ErrNoBackupsFound indicates a target base holds no timestamped roots.
	ErrNoBackupsFound = errors.New("no backups found")
)

// Kind classifies the result of visiting one source entry.
type Kind int

const (
	// KindFile is a regular file whose contents were copied.
	KindFile Kind = iota
	// KindDirectory is a directory created (or found) in the destination.
	KindDirectory
	// KindSkipped is an entry that was deliberately not copied.
	KindSkipped
	// KindFailed is an entry, or a whole subtree, that could not be copied.
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSkipped:
		return "skipped"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result for a single source entry.
type Outcome struct {
	// Path is the source path.
	Path string
	// Dest is the destination path.
	Dest string
	Kind Kind

	// Err explains a failed or skipped entry.
	Err error

	// PermErr records a failure to copy permission bits onto an otherwise
	// successfully copied file. It never turns the outcome into KindFailed.
	PermErr error
}

// Request describes one invocation of the orchestrator.
type Request struct {
	// Source is the directory to back up.
	Source string
	// TargetBase is the directory receiving timestamped roots. When empty
	// the persisted default is used.
	TargetBase string
	// OverrideDefault persists TargetBase as the new default and skips
	// the backup.
	OverrideDefault bool
}

// Status is the overall result of a run.
type Status int

const (
	// StatusSuccess means every entry was copied or deliberately skipped.
	StatusSuccess Status = iota
	// StatusPartial means the root was created but some entries failed.
	StatusPartial
	// StatusConfigUpdated means only the default target was persisted.
	StatusConfigUpdated
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPartial:
		return "partial success"
	case StatusConfigUpdated:
		return "configuration updated"
	default:
		return "unknown"
	}
}

// Result aggregates a run.
type Result struct {
	Status     Status
	TargetBase string
	// Root is the timestamped backup root; empty in configuration mode.
	Root       string
	Outcomes   []Outcome
}

// Counts tallies outcomes by kind.
type Counts struct {
	Files        int
	Directories  int
	Skipped      int
	Failed       int
	PermWarnings int
}

// Failed returns the failed outcomes in visit order.
func (r *Result) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Kind == KindFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Counts tallies the outcomes of r.
func (r *Result) Counts() Counts {
	var c Counts
	for _, o := range r.Outcomes {
		switch o.Kind {
		case KindFile:
			c.Files++
		case KindDirectory:
			c.Directories++
		case KindSkipped:
			c.Skipped++
		case KindFailed:
			c.Failed++
		}
		if o.PermErr != nil {
			c.PermWarnings++
		}
	}
	return c
}

func statusOf(outcomes []Outcome) Status {
	for _, o := range outcomes {
		if o.Kind == KindFailed {
			return StatusPartial
		}
	}
	return StatusSuccess
}
