// Package logging builds the logrus loggers used across scout.
//
// A single base logger is created at startup from configuration. Each
// pipeline run derives its own logger from it with ForRun, so the debug
// flag of one request never changes the verbosity of another.
package logging

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Config controls the base logger.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Format is "text" or "json".
	Format string
	Output io.Writer
}

// DefaultConfig returns a text logger at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "text",
		Output: os.Stderr,
	}
}

// New creates the base logger.
func New(config Config) *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(&lockedWriter{w: out})
	if config.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{TimestampFormat: time.RFC3339, FullTimestamp: true})
	}
	return logger
}

// ForRun derives a logger for one run. It shares output, formatter and hooks
// with base; debug raises its level to Debug without touching base.
//
// Writes of all loggers derived from the same base are serialized, and so are
// writes of base itself when it was built by New. The output of base must not
// change once runs have started.
func ForRun(base *logrus.Logger, debug bool) *logrus.Logger {
	logger := &logrus.Logger{
		Out:          sharedOutput(base),
		Hooks:        base.Hooks,
		Formatter:    base.Formatter,
		ReportCaller: base.ReportCaller,
		Level:        base.GetLevel(),
		ExitFunc:     base.ExitFunc,
	}
	if debug {
		logger.Level = logrus.DebugLevel
	}
	return logger
}

// lockedWriter serializes writes from loggers that do not share a mutex.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// outputs maps a base logger not built by New to the guard of its output.
var outputs sync.Map

func sharedOutput(base *logrus.Logger) io.Writer {
	if w, ok := base.Out.(*lockedWriter); ok {
		return w
	}
	w, _ := outputs.LoadOrStore(base, &lockedWriter{w: base.Out})
	return w.(*lockedWriter)
}

type ctxLoggerKey struct{}

// NewContext returns a context carrying the logger.
func NewContext(ctx context.Context, logger logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// FromContext returns the logger carried by ctx, or the standard logger.
func FromContext(ctx context.Context) logrus.FieldLogger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(logrus.FieldLogger); ok {
		return logger
	}
	return logrus.StandardLogger()
}
