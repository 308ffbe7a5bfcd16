package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"error", LogLevelError},
		{"verbose", LogLevelInfo},
		{"", LogLevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestInitializeJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Initialize(&Config{Level: LogLevelWarn, Output: &buf, JSONFormat: true}); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	defer func() { _ = Initialize(nil) }()

	Info("dropped")
	Warn("kept", "issue_id", "ISS-1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if record["msg"] != "kept" {
		t.Errorf("msg = %v, want kept", record["msg"])
	}
	if record["issue_id"] != "ISS-1" {
		t.Errorf("issue_id = %v, want ISS-1", record["issue_id"])
	}
}

func TestInitializeWithFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "codescribe.log")

	if err := Initialize(&Config{Level: LogLevelInfo, Output: &buf, File: path}); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	Info("to both sinks", "command", "status")
	if err := Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	defer func() { _ = Initialize(nil) }()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "to both sinks") {
		t.Errorf("log file missing record: %q", data)
	}
	if !strings.Contains(buf.String(), "to both sinks") {
		t.Errorf("console output missing record: %q", buf.String())
	}
}
