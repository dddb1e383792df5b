package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger wraps Logger with test observation capabilities.
type TestLogger struct {
	*Logger
	observed *observer.ObservedLogs
}

// NewTestLogger creates a logger for testing with full observation.
func NewTestLogger() *TestLogger {
	core, observed := observer.New(zapcore.DebugLevel)
	return &TestLogger{
		Logger:   &Logger{zap: zap.New(core)},
		observed: observed,
	}
}

// All returns all logged entries.
func (t *TestLogger) All() []observer.LoggedEntry {
	return t.observed.All()
}

// FilterMessage returns entries whose message contains the substring.
func (t *TestLogger) FilterMessage(substr string) []observer.LoggedEntry {
	var out []observer.LoggedEntry
	for _, entry := range t.observed.All() {
		if strings.Contains(entry.Message, substr) {
			out = append(out, entry)
		}
	}
	return out
}

// Reset clears all logged entries.
func (t *TestLogger) Reset() {
	t.observed.TakeAll()
}

// AssertLogged verifies a log entry containing the message substring exists.
func (t *TestLogger) AssertLogged(tb testing.TB, msgContains string) {
	tb.Helper()
	if len(t.FilterMessage(msgContains)) == 0 {
		tb.Errorf("expected log containing %q, logs: %+v", msgContains, t.observed.All())
	}
}

// AssertNotLogged verifies no log entry contains the message substring.
func (t *TestLogger) AssertNotLogged(tb testing.TB, msgContains string) {
	tb.Helper()
	if entries := t.FilterMessage(msgContains); len(entries) > 0 {
		tb.Errorf("expected no log containing %q, found %d", msgContains, len(entries))
	}
}
