package logger_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricirt/sms-engine/internal/config"
	"github.com/ricirt/sms-engine/internal/logger"
)

func TestNew_WritesConsoleAndFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "log", "sms-engine.log")
	var console bytes.Buffer

	log, err := logger.New(config.Log{Level: "info", File: file, MaxSizeMB: 1}, &console)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("dispatch completed")
	require.NoError(t, log.Sync())

	assert.Contains(t, console.String(), `"msg":"dispatch completed"`)
	assert.NotContains(t, console.String(), "hidden")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dispatch completed")
}

func TestNew_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	log, err := logger.New(config.Log{Level: "debug"}, &console)
	require.NoError(t, err)

	log.Debug("visible")
	assert.Contains(t, console.String(), "visible")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := logger.New(config.Log{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}
