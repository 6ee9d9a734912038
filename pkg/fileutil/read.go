package fileutil

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/thoreinstein/snapback/internal/errors"
)

// ErrLineTooLong indicates the first line of a file exceeded the read limit.
var ErrLineTooLong = errors.New("line exceeds read limit")

// ReadFirstLine returns the first line of path without its line terminator
// ("\n" or "\r\n"). At most limit bytes are read; a longer first line yields
// ErrLineTooLong. An empty file returns "" and io.EOF.
func ReadFirstLine(path string, limit int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening file")
	}
	defer f.Close()

	r := bufio.NewReader(io.LimitReader(f, int64(limit)+1))
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "reading file")
	}
	if line == "" {
		return "", io.EOF
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if len(line) > limit {
		return "", ErrLineTooLong
	}
	return line, nil
}
