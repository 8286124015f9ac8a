package easel

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards all records. Enabled returns
// false so callers skip message formatting entirely, making disabled
// logging effectively free.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so SetLogger can
// be called concurrently with logging from worker goroutines.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for easel and all its subpackages.
// By default easel produces no log output. Pass nil to restore the
// default silent behavior.
//
// Levels used by easel:
//   - slog.LevelDebug: cache rebuilds, gesture transitions, dab counts
//   - slog.LevelInfo: lifecycle events (project restored, export written)
//   - slog.LevelWarn: recoverable per-item failures (missing asset,
//     decode error, stale worker result dropped)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Subpackages call this to share one
// logger configuration without import cycles.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
