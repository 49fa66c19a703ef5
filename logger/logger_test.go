package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, buf, "test")
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("stream")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.Component() != "stream" {
		t.Errorf("expected component 'stream', got %q", l.Component())
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "invalid-level", Format: "json"}, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be filtered, got %q", buf.String())
	}
	l.Info("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected info message, got %q", buf.String())
	}
}

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "debug")
	l.Debug("pushed", Fields(FieldStreamID, "abc", FieldChunkSize, 3))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if entry[FieldStreamID] != "abc" {
		t.Errorf("expected stream_id=abc, got %v", entry[FieldStreamID])
	}
	if entry[FieldComponent] != "test" {
		t.Errorf("expected component=test, got %v", entry[FieldComponent])
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info").WithComponent("stream")
	if l.Component() != "stream" {
		t.Errorf("expected component 'stream', got %q", l.Component())
	}
	l.Info("x")
	if !strings.Contains(buf.String(), `"component":"stream"`) {
		t.Errorf("expected component field, got %q", buf.String())
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info").
		WithFields(map[string]interface{}{FieldEvent: "close"}).
		WithError(errors.New("boom"))
	l.Error("failed")
	out := buf.String()
	if !strings.Contains(out, `"event":"close"`) || !strings.Contains(out, "boom") {
		t.Errorf("expected event and error fields, got %q", out)
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("nothing")
	l.WithComponent("x").Info("still nothing")
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected output 'stderr', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp=true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "debug", Format: "json"}, false},
		{"disabled", Config{Level: "disabled", Format: "console"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestConsoleLoggerNoColor(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, &buf, "")
	l.Warn("careful")
	if !strings.Contains(buf.String(), "[WRN]") {
		t.Errorf("expected [WRN] tag, got %q", buf.String())
	}
}

func TestRegisterAndGet(t *testing.T) {
	l := Nop()
	Register("custom", l)
	if Get("custom") != l {
		t.Error("expected registered logger")
	}
	Register("custom", nil)
	if Get("custom") == l {
		t.Error("expected registration removed")
	}
}

func TestGetUnregistered(t *testing.T) {
	l := Get("never-registered")
	if l.Component() != "never-registered" {
		t.Errorf("expected component name, got %q", l.Component())
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields %v", m)
	}
	if len(m) != 2 {
		t.Errorf("expected 2 keys, got %d", len(m))
	}
}

func TestErrorFields(t *testing.T) {
	m := ErrorFields("flush", errors.New("bad"))
	if m[FieldOperation] != "flush" || m[FieldError] != "bad" {
		t.Errorf("unexpected fields %v", m)
	}
}

func TestDurationFields(t *testing.T) {
	m := DurationFields("transform", 1500*time.Millisecond)
	if m[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500, got %v", m[FieldDuration])
	}
}
