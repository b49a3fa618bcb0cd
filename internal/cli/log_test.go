package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	if logger == nil {
		t.Fatal("newLogger() returned nil")
	}

	logger.Info("test message")

	if buf.Len() == 0 {
		t.Error("logger should have written output")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
		{
			name:    "warn at error level",
			level:   log.ErrorLevel,
			logFunc: func(l *log.Logger) { l.Warn("test") },
			wantLog: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			if tt.wantLog && buf.Len() == 0 {
				t.Error("expected log output, got none")
			}
			if !tt.wantLog && buf.Len() != 0 {
				t.Errorf("expected no log output, got %q", buf.String())
			}
		})
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.DebugLevel)

	ctx := withLogger(context.Background(), logger)
	if got := loggerFromContext(ctx); got != logger {
		t.Error("loggerFromContext() did not return the attached logger")
	}
}

func TestLoggerContextFallback(t *testing.T) {
	if got := loggerFromContext(context.Background()); got == nil {
		t.Error("loggerFromContext() on empty context should fall back to default, got nil")
	}
}
