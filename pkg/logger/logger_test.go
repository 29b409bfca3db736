package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("warn", &buf)

	l.Info("should be filtered")
	l.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Fatalf("info message logged at warn level: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Fatalf("warn message missing: %s", out)
	}
}

func TestNewEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New("info", &buf)

	l.Info("structured", "best_value", -42.5, "eval_count", 7)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if rec["msg"] != "structured" {
		t.Fatalf("expected msg field, got %v", rec["msg"])
	}
	if rec["best_value"] != -42.5 {
		t.Fatalf("expected best_value -42.5, got %v", rec["best_value"])
	}
}

func TestParseLevelDefaults(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"bogus", "INFO"},
		{"", "INFO"},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in).String(); got != tt.want {
			t.Fatalf("parseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNewTextOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewText("info", &buf)

	l.Info("plain", "k", "v")
	if !strings.Contains(buf.String(), "msg=plain") {
		t.Fatalf("expected text-formatted output, got %s", buf.String())
	}
}
