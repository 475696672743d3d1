package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// CapturedRecord is one log call seen by a LogCapture. Keys of attributes
// bound under a group are prefixed with "group.".
type CapturedRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type captureSink struct {
	mu      sync.Mutex
	records []CapturedRecord
}

// LogCapture is a slog.Handler that keeps every record in memory. Handlers
// derived through WithAttrs or WithGroup write into the same sink.
type LogCapture struct {
	sink   *captureSink
	bound  map[string]any
	prefix string
}

// NewTestLogger returns a logger backed by a fresh LogCapture. If the test
// fails, the captured records are written to its log.
func NewTestLogger(t *testing.T) (*slog.Logger, *LogCapture) {
	c := &LogCapture{sink: &captureSink{}}
	if t != nil {
		t.Cleanup(func() {
			if t.Failed() {
				c.dump(t)
			}
		})
	}
	return slog.New(c), c
}

func (c *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

func (c *LogCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(c.bound)+r.NumAttrs())
	for k, v := range c.bound {
		attrs[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[c.prefix+a.Key] = a.Value.Any()
		return true
	})

	c.sink.mu.Lock()
	c.sink.records = append(c.sink.records, CapturedRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	c.sink.mu.Unlock()
	return nil
}

func (c *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := make(map[string]any, len(c.bound)+len(attrs))
	for k, v := range c.bound {
		bound[k] = v
	}
	for _, a := range attrs {
		bound[c.prefix+a.Key] = a.Value.Any()
	}
	return &LogCapture{sink: c.sink, bound: bound, prefix: c.prefix}
}

func (c *LogCapture) WithGroup(name string) slog.Handler {
	if name == "" {
		return c
	}
	return &LogCapture{sink: c.sink, bound: c.bound, prefix: c.prefix + name + "."}
}

// Records returns a copy of everything captured so far.
func (c *LogCapture) Records() []CapturedRecord {
	c.sink.mu.Lock()
	defer c.sink.mu.Unlock()
	return append([]CapturedRecord(nil), c.sink.records...)
}

// AtLevel returns the records logged at exactly level.
func (c *LogCapture) AtLevel(level slog.Level) []CapturedRecord {
	var out []CapturedRecord
	for _, r := range c.Records() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// HasMessage reports whether any record's message contains msg.
func (c *LogCapture) HasMessage(msg string) bool {
	for _, r := range c.Records() {
		if strings.Contains(r.Message, msg) {
			return true
		}
	}
	return false
}

// HasAttr reports whether any record carries key with value.
func (c *LogCapture) HasAttr(key string, value any) bool {
	for _, r := range c.Records() {
		if v, ok := r.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}

func (c *LogCapture) Count() int {
	c.sink.mu.Lock()
	defer c.sink.mu.Unlock()
	return len(c.sink.records)
}

func (c *LogCapture) Reset() {
	c.sink.mu.Lock()
	c.sink.records = nil
	c.sink.mu.Unlock()
}

func (c *LogCapture) dump(t *testing.T) {
	for _, r := range c.Records() {
		t.Logf("[%s] %s %v", r.Level, r.Message, r.Attrs)
	}
}

// AssertLogContains fails t unless a record at level contains msg.
func AssertLogContains(t *testing.T, c *LogCapture, level slog.Level, msg string) {
	t.Helper()
	for _, r := range c.AtLevel(level) {
		if strings.Contains(r.Message, msg) {
			return
		}
	}
	t.Errorf("no %s log containing %q", level, msg)
}

// AssertNoErrors fails t if anything was logged at error level.
func AssertNoErrors(t *testing.T, c *LogCapture) {
	t.Helper()
	for _, r := range c.AtLevel(slog.LevelError) {
		t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
	}
}
