package hitbox

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled reports false so callers skip formatting altogether.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for hitbox and all its sub-packages.
// By default nothing is logged. Pass nil to restore the silent logger.
//
// Log levels used by hitbox:
//   - [slog.LevelDebug]: GPU resource creation, offscreen target resizes
//   - [slog.LevelInfo]: session and pipeline lifecycle
//   - [slog.LevelWarn]: rejected edits (capacity, insert cursor) and
//     expensive GPU read-backs
//
// Example:
//
//	hitbox.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Sub-packages (render, backend/native,
// internal/gpu) call this to share one configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
