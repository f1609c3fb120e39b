package configs

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevelAndFormat(t *testing.T) {
	tests := []struct {
		level, format string
		wantLevel     slog.Level
		wantFormat    string
	}{
		{"debug", "json", slog.LevelDebug, "json"},
		{" WARNING ", "JSON", slog.LevelWarn, "json"},
		{"err", "text", slog.LevelError, "text"},
		{"verbose", "yaml", slog.LevelInfo, "text"},
	}
	for _, tt := range tests {
		c := Logger{Level: tt.level, Format: tt.format}
		assert.Equal(t, tt.wantLevel, c.SlogLevel(), tt.level)
		assert.Equal(t, tt.wantFormat, c.SlogFormat(), tt.format)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := Logger{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("dropped")
	logger.Warn("kept", slog.Int("campaign_id", 3))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, 3.0, rec["campaign_id"])
}
