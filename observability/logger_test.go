package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meysamhadeli/ort-curator/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_JSONConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LogConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf))

	logger.Info("scan document classified", zap.String("status", "SUCCESS"))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "ort-curator", entry["logger"])
	assert.Equal(t, "SUCCESS", entry["status"])
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LogConfig{Level: "warn", Format: "console"}, zapcore.AddSync(&buf))

	logger.Info("hidden")
	logger.Warn("visible")
	require.NoError(t, logger.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestNewLogger_InvalidLevelFallsBackToWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LogConfig{Level: "chatty", Format: "json"}, zapcore.AddSync(&buf))

	logger.Info("hidden")
	logger.Error("visible")
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1)
}

func TestNewLogger_FileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "ort-curator.log")
	logger := NewLogger(config.LogConfig{Level: "debug", Format: "console", File: logFile, MaxSize: 1}, zapcore.AddSync(&bytes.Buffer{}))

	logger.Debug("prompt built", zap.Int("prompt_length", 42))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"prompt_length":42`)
}

func TestSync_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() { Sync(nil) })
}
