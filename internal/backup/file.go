package backup

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/thoreinstein/snapback/internal/errors"
	"github.com/thoreinstein/snapback/internal/logging"
)

// permBits are the mode bits copied from source to destination files.
const permBits = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

// FileCopier copies one regular file's bytes and permission bits.
type FileCopier struct {
	chunkSize int
	logger    *slog.Logger

	// seams for tests
	wrapDest func(io.Writer) io.Writer
	chmod    func(string, fs.FileMode) error
}

// NewFileCopier returns a FileCopier streaming in chunkSize pieces
// (DefaultChunkSize when chunkSize <= 0). A nil logger discards output.
func NewFileCopier(chunkSize int, logger *slog.Logger) *FileCopier {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &FileCopier{
		chunkSize: chunkSize,
		logger:    logging.OrDiscard(logger),
		chmod:     os.Chmod,
	}
}

// CopyFile copies src to dest, creating or truncating dest.
//
// Open failures leave dest untouched (source) or absent (destination) and
// report KindFailed. Short writes mark the outcome failed but streaming
// continues; a read or write error stops it. Partial output is kept. The
// source permission bits are applied only after a clean pass, and a chmod
// failure is recorded in PermErr without failing the outcome.
func (c *FileCopier) CopyFile(src, dest string) Outcome {
	out := Outcome{Path: src, Dest: dest, Kind: KindFile}

	in, err := os.Open(src)
	if err != nil {
		return c.fail(out, errors.Wrap(err, "opening source file"))
	}
	defer in.Close()

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return c.fail(out, errors.Wrap(err, "creating destination file"))
	}
	c.logger.Log(context.Background(), logging.LevelTrace, "created destination file", "dest", dest)

	var w io.Writer = f
	if c.wrapDest != nil {
		w = c.wrapDest(f)
	}
	streamErr := c.stream(w, in)
	if err := f.Close(); err != nil && streamErr == nil {
		streamErr = errors.Wrap(err, "closing destination file")
	}
	if streamErr != nil {
		return c.fail(out, streamErr)
	}

	info, err := in.Stat()
	if err == nil {
		err = c.chmod(dest, info.Mode()&permBits)
	}
	if err != nil {
		out.PermErr = errors.Wrap(err, "setting permissions")
		c.logger.Warn("permissions not set correctly", "dest", dest, "err", err)
	}

	c.logger.Debug("copied file", "src", src, "dest", dest)
	return out
}

// stream copies src to dst chunk by chunk. Short writes are counted and
// reported after the source is exhausted; errors end the copy at once.
func (c *FileCopier) stream(dst io.Writer, src io.Reader) error {
	buf := make([]byte, c.chunkSize)
	short := 0
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			if werr != nil {
				return errors.Wrap(werr, "writing destination file")
			}
			if w < n {
				short++
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return errors.Wrap(rerr, "reading source file")
		}
	}
	if short > 0 {
		return errors.Wrapf(io.ErrShortWrite, "%d chunks", short)
	}
	return nil
}

func (c *FileCopier) fail(out Outcome, err error) Outcome {
	out.Kind = KindFailed
	out.Err = err
	c.logger.Error("failed to copy file", "src", out.Path, "dest", out.Dest, "err", err)
	return out
}
