package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// newTestLogger returns a Logger that writes JSON into buf.
func newTestLogger(buf *bytes.Buffer, level LogLevel) *Logger {
	return NewWithOutput(buf, level, &logrus.JSONFormatter{})
}

// ---------------------------------------------------------------------------
// Logger.Module
// ---------------------------------------------------------------------------

func TestLogger_Module(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, DEBUG)
	child := l.Module("host")

	child.Info("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v (raw: %s)", err, buf.String())
	}

	if entry["module"] != "host" {
		t.Fatalf("module = %v, want %q", entry["module"], "host")
	}
	if entry["msg"] != "hello" {
		t.Fatalf("msg = %v, want %q", entry["msg"], "hello")
	}
}

func TestLogger_ModuleChain(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, DEBUG)
	child := l.Module("verifier").With("period", 10)

	child.Info("checked")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v (raw: %s)", err, buf.String())
	}

	if entry["module"] != "verifier" {
		t.Fatalf("module = %v, want %q", entry["module"], "verifier")
	}
	if v, ok := entry["period"].(float64); !ok || v != 10 {
		t.Fatalf("period = %v, want 10", entry["period"])
	}
}

// ---------------------------------------------------------------------------
// Logger levels
// ---------------------------------------------------------------------------

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		level  LogLevel
		logFn  func(l *Logger)
		expect bool // whether message should appear
	}{
		{INFO, func(l *Logger) { l.Debug("nope") }, false},
		{INFO, func(l *Logger) { l.Info("yes") }, true},
		{INFO, func(l *Logger) { l.Warn("yes") }, true},
		{INFO, func(l *Logger) { l.Error("yes") }, true},
		{WARN, func(l *Logger) { l.Info("nope") }, false},
		{WARN, func(l *Logger) { l.Warn("yes") }, true},
		{ERROR, func(l *Logger) { l.Warn("nope") }, false},
		{DEBUG, func(l *Logger) { l.Debug("yes") }, true},
	}

	for i, tt := range tests {
		var buf bytes.Buffer
		l := newTestLogger(&buf, tt.level)
		tt.logFn(l)

		got := buf.Len() > 0
		if got != tt.expect {
			t.Errorf("test %d: output=%v, want %v (level=%v, buf=%s)",
				i, got, tt.expect, tt.level, buf.String())
		}
		if l.Enabled(DEBUG) != (tt.level == DEBUG) {
			t.Errorf("test %d: Enabled(DEBUG) mismatch at level %v", i, tt.level)
		}
	}
}

// ---------------------------------------------------------------------------
// Structured key-value args
// ---------------------------------------------------------------------------

func TestLogger_KeyValueArgs(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, INFO)

	l.Info("update rejected", "participants", 341, "reason", "quorum_not_met", "dangling")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// Numbers decode as float64.
	if v, ok := entry["participants"].(float64); !ok || v != 341 {
		t.Fatalf("participants = %v, want 341", entry["participants"])
	}
	if entry["reason"] != "quorum_not_met" {
		t.Fatalf("reason = %v, want %q", entry["reason"], "quorum_not_met")
	}
	if entry["EXTRA"] != "dangling" {
		t.Fatalf("EXTRA = %v, want %q", entry["EXTRA"], "dangling")
	}
}

// ---------------------------------------------------------------------------
// Default logger
// ---------------------------------------------------------------------------

func TestDefaultLogger(t *testing.T) {
	// The package init() sets a default logger; verify it is not nil and
	// does not panic.
	if Default() == nil {
		t.Fatal("Default() returned nil")
	}

	var buf bytes.Buffer
	l := newTestLogger(&buf, INFO)
	SetDefault(l)
	defer SetDefault(New(INFO)) // restore

	Info("test info", "k", "v")

	if !strings.Contains(buf.String(), "test info") {
		t.Fatalf("output missing 'test info': %s", buf.String())
	}

	// SetDefault(nil) should be a no-op.
	SetDefault(nil)
	if Default() != l {
		t.Fatal("SetDefault(nil) replaced the logger")
	}
}

// ---------------------------------------------------------------------------
// Package-level functions
// ---------------------------------------------------------------------------

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, DEBUG)
	SetDefault(l)
	defer SetDefault(New(INFO))

	Debug("d")
	Info("i")
	Warn("w")
	Error("e")

	out := buf.String()
	for _, msg := range []string{`"msg":"d"`, `"msg":"i"`, `"msg":"w"`, `"msg":"e"`} {
		if !strings.Contains(out, msg) {
			t.Errorf("missing message %q in output", msg)
		}
	}
}
