// Package log provides structured logging for lightcheck. It wraps logrus
// with conveniences such as per-module child loggers and slog-style key/value
// arguments.
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus entry with lightcheck-specific context.
type Logger struct {
	inner *logrus.Entry
}

// defaultLogger is the process-wide logger used by the package-level
// convenience functions.
var defaultLogger *Logger

func init() {
	defaultLogger = New(INFO)
}

// New creates a Logger that writes text to stderr at the given level.
func New(level LogLevel) *Logger {
	return NewWithOutput(os.Stderr, level, &logrus.TextFormatter{FullTimestamp: true})
}

// NewWithOutput creates a Logger writing to w with the supplied formatter.
// This is useful for testing or for writing to a custom destination.
func NewWithOutput(w io.Writer, level LogLevel, formatter logrus.Formatter) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level.logrusLevel())
	if formatter != nil {
		l.SetFormatter(formatter)
	}
	return &Logger{inner: logrus.NewEntry(l)}
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the current package-level default logger.
func Default() *Logger {
	return defaultLogger
}

// Module returns a child logger with an additional "module" field. This is
// the primary way subsystems (host, cmd, ...) obtain their own logger.
func (l *Logger) Module(name string) *Logger {
	return &Logger{inner: l.inner.WithField("module", name)}
}

// With returns a child logger with additional key-value context.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.WithFields(fields(args))}
}

// AddHook attaches a logrus hook to the underlying logger. The hook sees
// entries from this logger and every child derived from it.
func (l *Logger) AddHook(h logrus.Hook) {
	l.inner.Logger.AddHook(h)
}

// Enabled reports whether messages at level would be emitted.
func (l *Logger) Enabled(level LogLevel) bool {
	return l.inner.Logger.IsLevelEnabled(level.logrusLevel())
}

// Debug logs at DEBUG.
func (l *Logger) Debug(msg string, args ...any) { l.inner.WithFields(fields(args)).Debug(msg) }

// Info logs at INFO.
func (l *Logger) Info(msg string, args ...any) { l.inner.WithFields(fields(args)).Info(msg) }

// Warn logs at WARN.
func (l *Logger) Warn(msg string, args ...any) { l.inner.WithFields(fields(args)).Warn(msg) }

// Error logs at ERROR.
func (l *Logger) Error(msg string, args ...any) { l.inner.WithFields(fields(args)).Error(msg) }

// fields turns alternating key/value arguments into logrus fields. A trailing
// key without a value is kept under "EXTRA".
func fields(args []any) logrus.Fields {
	f := make(logrus.Fields, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		if i+1 == len(args) {
			f["EXTRA"] = args[i]
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		f[key] = args[i+1]
	}
	return f
}

// Debug logs at DEBUG using the default logger.
func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }

// Info logs at INFO using the default logger.
func Info(msg string, args ...any) { defaultLogger.Info(msg, args...) }

// Warn logs at WARN using the default logger.
func Warn(msg string, args ...any) { defaultLogger.Warn(msg, args...) }

// Error logs at ERROR using the default logger.
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }
