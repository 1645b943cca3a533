package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/nerrad567/colo-planner-core/internal/infrastructure/config"
)

func TestNew_Outputs(t *testing.T) {
	for _, out := range []string{"stdout", "stderr", "discard", ""} {
		if New(config.LoggingConfig{Output: out}, "1.0.0") == nil {
			t.Errorf("New(output %q) = nil", out)
		}
	}
}

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
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewWriter_JSONDefaultFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(config.LoggingConfig{Level: "info", Format: "json"}, "v0.3.0", &buf)

	logger.Component("workspace").Info("session opened", "colo_id", "201")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	want := map[string]string{
		"msg":       "session opened",
		"service":   ServiceName,
		"version":   "v0.3.0",
		"component": "workspace",
		"colo_id":   "201",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("entry[%q] = %v, want %q", k, entry[k], v)
		}
	}
}

func TestNewWriter_TextAndLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(config.LoggingConfig{Level: "warn", Format: "text"}, "dev", &buf)

	logger.Info("hidden")
	logger.Warn("shown", "tile_id", 1006)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "tile_id=1006") {
		t.Errorf("text output = %q", out)
	}
}

func TestLogger_With(t *testing.T) {
	logger := Default()
	child := logger.With("component", "mqtt")
	if child == nil || child == logger {
		t.Error("With() should return a distinct logger")
	}
}
