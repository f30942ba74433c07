package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_Level(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := newWithWriter(tt.level, true, &bytes.Buffer{})
			if got := logger.GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew_ProductionEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter("info", true, &buf)
	logger.Info().Str("port", "5000").Msg("server starting")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %q", buf.String())
	}
	if entry["message"] != "server starting" || entry["port"] != "5000" {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestNew_NonProductionIsConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter("info", false, &buf)
	logger.Info().Msg("hello")

	out := buf.String()
	if strings.HasPrefix(out, "{") {
		t.Errorf("non-production output should not be JSON: %q", out)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("output = %q", out)
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter("warn", true, &buf)
	logger.Info().Msg("dropped")

	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}
}
