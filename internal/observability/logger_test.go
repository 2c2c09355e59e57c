// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/dashvolt/grabbit-cli/internal/config"
)

func testLoggerConfig() config.LoggerConfig {
	return config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "grabbit-test",
		Colors: config.ColorConfig{
			Debug: "cyan",
			Info:  "green",
			Warn:  "yellow",
			Error: "red",
			Fatal: "red",
		},
	}
}

func TestInitialize_ConsoleOutput(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(testLoggerConfig(), zapcore.AddSync(&buf))

	GetLogger().Info("acquisition started")

	out := buf.String()
	assert.Contains(t, out, "acquisition started")
	assert.Contains(t, out, "grabbit-test.", "logger name prefixes console lines")
	assert.Contains(t, out, "\x1b[32m", "info lines carry the configured color")
}

func TestInitialize_LevelFiltering(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	cfg := testLoggerConfig()
	cfg.Level = "warn"
	var buf bytes.Buffer
	Initialize(cfg, zapcore.AddSync(&buf))

	logger := GetLogger()
	logger.Info("too quiet to surface")
	logger.Warn("loud enough")

	out := buf.String()
	assert.NotContains(t, out, "too quiet to surface")
	assert.Contains(t, out, "loud enough")
}

func TestInitialize_InvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	cfg := testLoggerConfig()
	cfg.Level = "chatty"
	var buf bytes.Buffer
	Initialize(cfg, zapcore.AddSync(&buf))

	logger := GetLogger()
	logger.Debug("below the fallback level")
	logger.Info("at the fallback level")

	out := buf.String()
	assert.NotContains(t, out, "below the fallback level")
	assert.Contains(t, out, "at the fallback level")
}

func TestInitialize_FileCoreWritesJSON(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	cfg := testLoggerConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "grabbit.log")
	var buf bytes.Buffer
	Initialize(cfg, zapcore.AddSync(&buf))

	GetLogger().Info("file bound entry")
	Sync()

	assert.FileExists(t, cfg.LogFile)
}

func TestInitialize_OnlyOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var first, second bytes.Buffer
	Initialize(testLoggerConfig(), zapcore.AddSync(&first))
	Initialize(testLoggerConfig(), zapcore.AddSync(&second))

	GetLogger().Info("routed to the first writer")

	assert.Contains(t, first.String(), "routed to the first writer")
	assert.Empty(t, second.String())
}

func TestGetLogger_FallbackBeforeInitialize(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger)
	// The fallback is a named development logger, usable but clearly marked.
	assert.True(t, strings.Contains(logger.Name(), "fallback") || logger.Name() == "")
}
