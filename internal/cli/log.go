// Package cli implements the easydep command-line interface.
//
// The root command drives the whole consolidation: workspace discovery,
// frequency analysis, the root manifest rewrite, and the member rewrites,
// reporting progress along the way. Logging uses charmbracelet/log with
// the logger carried through context.Context; --verbose enables debug
// output and --quiet suppresses everything below the error level.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at the given level, with
// timestamps formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with
// the elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker starting now.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since the tracker was created,
// rounded to the nearest millisecond.
func (p *progress) done(msg string) {
	p.logger.Debugf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package. A distinct
// type prevents collisions with other packages.
type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, falling back to
// log.Default so commands always have a valid logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
