package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"lifequest/internal/config"
)

func TestNewLevels(t *testing.T) {
	l, err := New(config.LoggingConfig{Level: "warn", Format: "json"}, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = New(config.LoggingConfig{Level: "warn", Format: "console"}, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNewRejectsUnknown(t *testing.T) {
	_, err := New(config.LoggingConfig{Format: "xml"}, false)
	assert.Error(t, err)
	_, err = New(config.LoggingConfig{Level: "loud"}, false)
	assert.Error(t, err)
}

func TestForTerminalUIWithoutFileDiscards(t *testing.T) {
	l, err := ForTerminalUI(config.LoggingConfig{Level: "debug"}, true)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestForTerminalUIWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.log")
	l, err := ForTerminalUI(config.LoggingConfig{Level: "info", File: path}, false)
	require.NoError(t, err)

	l.Info("logged in")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"logged in"`), string(data))
}
