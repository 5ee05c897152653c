// package shared carries the cross-cutting plumbing every StockMind package
// leans on: configuration, the SQLite database and its migrations, the error
// taxonomy, structured logging and ID generation.
package shared

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a [log.Logger] writing to w with timestamps and caller
// reporting enabled. A nil writer defaults to [os.Stderr]; the TUI passes a
// file here so log lines never tear the rendered dashboard.
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs
// added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID returns a fresh v4 [uuid.UUID] string. Every persisted row
// (holdings, trades, thoughts, memories, snapshots) gets one as its primary
// key; ordering comes from the per-table sequence counters instead.
func GenerateID() string {
	return uuid.New().String()
}
