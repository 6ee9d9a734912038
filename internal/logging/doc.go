// Package logging provides structured console logging for snapback on top of
// [log/slog].
//
// The text handler prints one bracketed label per line ([DEBUG], [INFO],
// [WARNING], [ERROR], [FATAL]) and colors it when stderr is a terminal.
// Verbosity flags map onto levels through [LevelFromVerbosity]; the extra
// [LevelTrace] level is used for per-entry copy progress.
//
//	logger := logging.New(logging.Config{
//		Level:  logging.LevelFromVerbosity(2),
//		Format: logging.FormatText,
//	})
//	logger.Warn("skipped entry", "path", p)
//
// Tests use [ForTest] so that log lines show up with -v or on failure.
package logging
