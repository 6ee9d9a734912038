package backup

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/thoreinstein/snapback/internal/errors"
)

const (
	// NamePrefix starts every timestamped root name.
	NamePrefix = "Backup "
	// TimestampLayout formats the local time as YYYY-MM-DD HH-MM-SS.
	TimestampLayout = "2006-01-02 15-04-05"
	// MaxPathLen is the platform path limit, terminator included.
	MaxPathLen = 4096
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Namer computes timestamped root paths.
type Namer struct {
	clock Clock
}

// NewNamer returns a Namer reading c; a nil c means SystemClock.
func NewNamer(c Clock) *Namer {
	if c == nil {
		c = SystemClock{}
	}
	return &Namer{clock: c}
}

// Name returns baseDir joined with "Backup YYYY-MM-DD HH-MM-SS" for the
// current local time. Trailing separators on baseDir are dropped so exactly
// one separator joins the two. A result that would not fit in MaxPathLen is
// an error rather than being truncated.
func (n *Namer) Name(baseDir string) (string, error) {
	if baseDir == "" {
		return "", ErrNoTarget
	}

	now := n.clock.Now()
	if now.IsZero() {
		return "", ErrInvalidTimestamp
	}
	name := NamePrefix + now.Local().Format(TimestampLayout)

	base := strings.TrimRight(baseDir, string(filepath.Separator))
	p := base + string(filepath.Separator) + name
	if len(p) >= MaxPathLen {
		return "", errors.Wrapf(ErrPathTooLong, "%d bytes", len(p))
	}
	return p, nil
}

// ParseName reports whether name is a timestamped root name and returns
// its local timestamp.
func ParseName(name string) (time.Time, bool) {
	stamp, ok := strings.CutPrefix(name, NamePrefix)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(TimestampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
