package logging

import "log/slog"

// Levels beyond the four slog defines.
const (
	// LevelTrace logs every entry visited during a copy.
	LevelTrace = slog.Level(-8)
	// LevelFatal marks the condition that aborts a run.
	LevelFatal = slog.Level(12)
)

// LevelFromVerbosity maps a -v count to a level: 0 warn, 1 info, 2 debug, 3+ trace.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// LevelLabel returns the console label for level.
func LevelLabel(level slog.Level) string {
	switch {
	case level >= LevelFatal:
		return "FATAL"
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARNING"
	case level >= slog.LevelInfo:
		return "INFO"
	case level >= slog.LevelDebug:
		return "DEBUG"
	default:
		return "TRACE"
	}
}

// withLevelNames makes the JSON handler print the custom level names
// instead of "ERROR+4" and "DEBUG-4".
func withLevelNames(opts *slog.HandlerOptions) *slog.HandlerOptions {
	o := slog.HandlerOptions{}
	if opts != nil {
		o = *opts
	}
	prev := o.ReplaceAttr
	o.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 && a.Key == slog.LevelKey {
			if lvl, ok := a.Value.Any().(slog.Level); ok {
				a.Value = slog.StringValue(LevelLabel(lvl))
			}
		}
		if prev != nil {
			return prev(groups, a)
		}
		return a
	}
	return &o
}
