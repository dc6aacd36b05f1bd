package util

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"nonsense", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.input))
		})
	}
}

func TestLoggerTextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{level: LevelInfo, fields: map[string]interface{}{}}
	logger.AddOutput(NewConsoleOutput(&buf, FormatText))

	logger.Debug("hidden")
	logger.With(F("day", "2024-01-01")).Info("reconstructed", F("items", 3))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[INFO] reconstructed day=2024-01-01 items=3")
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{level: LevelDebug, fields: map[string]interface{}{}}
	logger.AddOutput(NewConsoleOutput(&buf, FormatJSON))

	logger.Warn("record dropped", F("kind", "malformed_event"))

	var entry LogEntry
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "WARN", entry.Level)
	assert.Equal(t, "record dropped", entry.Message)
	assert.Equal(t, "malformed_event", entry.Fields["kind"])
}

func TestInitLoggerWritesFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "app.log")
	require.NoError(t, InitLogger("debug", logFile, FormatText, false))
	t.Cleanup(func() { SetGlobalLogger(nil) })

	LogDebugf("loaded %d markers", 2)
	LogInfo("done", F("day", "2024-01-01"))

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "loaded 2 markers")
	assert.Contains(t, string(data), "done day=2024-01-01")
}

func TestGlobalHelpersWithoutLogger(t *testing.T) {
	SetGlobalLogger(nil)
	assert.NotPanics(t, func() {
		LogDebug("x")
		LogWarnf("y %d", 1)
		LogError("z")
	})
}
