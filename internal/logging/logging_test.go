package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithWriter(t *testing.T) {
	t.Run("Text", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLoggerWithWriter(slog.LevelInfo, "text", &buf)
		require.NoError(t, err)

		logger.Info("dispatch", "tasks", 3)
		require.Contains(t, buf.String(), "msg=dispatch")
		require.Contains(t, buf.String(), "tasks=3")
	})
	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLoggerWithWriter(slog.LevelInfo, "JSON", &buf)
		require.NoError(t, err)

		logger.Info("dispatch", "tasks", 3)
		require.Contains(t, buf.String(), `"msg":"dispatch"`)
		require.Contains(t, buf.String(), `"tasks":3`)
	})
	t.Run("LevelFiltering", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLoggerWithWriter(slog.LevelWarn, "text", &buf)
		require.NoError(t, err)

		logger.Info("hidden")
		logger.Warn("shown")
		require.NotContains(t, buf.String(), "hidden")
		require.Contains(t, buf.String(), "shown")
	})
	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := NewLoggerWithWriter(slog.LevelInfo, "xml", &bytes.Buffer{})
		require.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		require.NoError(t, err, tt.input)
		require.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}
