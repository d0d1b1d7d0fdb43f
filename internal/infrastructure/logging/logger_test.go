package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestNewFromSettings(t *testing.T) {
	logger := NewFromSettings("debug", false)
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	fallback := NewFromSettings("loud", false)
	require.NotNil(t, fallback)
	assert.False(t, fallback.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, fallback.Core().Enabled(zapcore.InfoLevel))
}

func TestRecordsCarryServiceAndComponent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	logger, err := New(Options{Level: "info", Outputs: []string{path}})
	require.NoError(t, err)

	logger.Component("blob").Info("Upload stored", zap.Int64("size", 12))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, Service, record["service"])
	assert.Equal(t, "blob", record["logger"])
	assert.Equal(t, "Upload stored", record["message"])
	assert.Contains(t, record, "timestamp")
}

func TestNopComponent(t *testing.T) {
	logger := NewNop().Component("desktop")
	require.NotNil(t, logger)
	logger.Info("discarded")
}
