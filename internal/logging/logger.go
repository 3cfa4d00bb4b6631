package logging

import (
	"io"
	"log/slog"
	"os"
)

// RunIDKey is the attribute every record logged during a run carries.
const RunIDKey = "run_id"

// New creates the application logger on Stderr, keeping Stdout free for
// reports and JSON responses.
func New(level slog.Level) *slog.Logger {
	return NewWriter(os.Stderr, level)
}

// NewWriter creates a text logger on w.
// It standardizes common keys ("error" -> "err").
func NewWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// ForRun scopes logger to one run.
func ForRun(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With(RunIDKey, runID)
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
