package iconstage

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/iconstage/fit"
	"github.com/gogpu/iconstage/override"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine,
// including the compute worker.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for iconstage and the fit and override
// packages. By default iconstage produces no log output.
//
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by iconstage:
//   - [slog.LevelDebug]: per-item geometry and render slot decisions
//   - [slog.LevelInfo]: worker lifecycle, icons computed
//   - [slog.LevelWarn]: stale targets, skipped fitting stages, retries
//   - [slog.LevelError]: fitting failures, empty sprites, capture failures
//
// Example:
//
//	iconstage.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	fit.SetLogger(l)
	override.SetLogger(l)
}

// Logger returns the current logger used by iconstage.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

func slogger() *slog.Logger { return loggerPtr.Load() }
