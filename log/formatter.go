package log

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity of a log entry.
type LogLevel int

const (
	// DEBUG is the most verbose level, used for development diagnostics.
	DEBUG LogLevel = iota
	// INFO is for general operational messages.
	INFO
	// WARN indicates a potentially harmful situation.
	WARN
	// ERROR indicates a failure that does not stop the application.
	ERROR
)

// String returns the uppercase name of the level.
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case DEBUG:
		return logrus.DebugLevel
	case WARN:
		return logrus.WarnLevel
	case ERROR:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// LevelFromString parses a log level from its string representation.
// The match is case-insensitive. Unrecognised strings return INFO.
func LevelFromString(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "TRACE":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR", "CRIT", "FATAL":
		return ERROR
	default:
		return INFO
	}
}

// Supported output formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatTerminal = "terminal"
)

// FormatterByName returns the logrus formatter for a format name: "text"
// (logfmt-like key=value), "terminal" (colored text) or "json" (one object
// per line).
func FormatterByName(name string) (logrus.Formatter, error) {
	switch strings.ToLower(name) {
	case "", FormatText:
		return &logrus.TextFormatter{FullTimestamp: true, DisableColors: true}, nil
	case FormatTerminal:
		return &logrus.TextFormatter{FullTimestamp: true, ForceColors: true}, nil
	case FormatJSON:
		return &logrus.JSONFormatter{}, nil
	default:
		return nil, errors.Errorf("log: unknown format %q", name)
	}
}
