package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		got := ParseLevel(tt.input)
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestStageLogHelpersJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, "json")

	LogStageComplete(logger, "run-1", "ANALYTICS", 42, 1500*time.Millisecond)

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if m["msg"] != "Stage completed" {
		t.Errorf("msg = %v", m["msg"])
	}
	if m["stage"] != "ANALYTICS" || m["run_id"] != "run-1" {
		t.Errorf("missing stage attributes: %v", m)
	}
	if m["rows"] != float64(42) || m["duration_ms"] != float64(1500) {
		t.Errorf("unexpected rows/duration: %v", m)
	}
}

func TestStageFailedText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, "text")

	LogStageFailed(logger, "run-2", "STANDARDIZATION", errors.New("boom"))

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "error=boom") {
		t.Errorf("unexpected text output: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn, "json")

	LogStageStart(logger, "run-3", "ANOMALY_DETECTION")
	if buf.Len() != 0 {
		t.Errorf("info message should be filtered at warn level: %s", buf.String())
	}
}
