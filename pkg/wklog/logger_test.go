package wklog

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogger(t *testing.T) {
	opts := NewOptions()
	opts.Level = zap.DebugLevel
	opts.LineNum = true
	opts.NoStderr = true
	Configure(opts)

	Info("this is info")
	Debug("this is debug")
	Error("this is error", zap.String("key", "value"))
	assert.Equal(t, zap.DebugLevel, Level())
}

func TestLoggerWritesFiles(t *testing.T) {
	dir := t.TempDir()
	opts := NewOptions()
	opts.Level = zap.InfoLevel
	opts.LogDir = dir
	opts.NoStderr = true
	Configure(opts)

	l := NewWKLog("test")
	l.Info("generated", zap.Int("nodes", 3))
	l.Debug("dropped below level")
	l.Error("failed", zap.String("reason", "boom"))
	_ = Sync()

	info, err := os.ReadFile(path.Join(dir, "info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "【test】generated")
	assert.NotContains(t, string(info), "dropped below level")

	errLog, err := os.ReadFile(path.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errLog), "【test】failed")
	assert.NotContains(t, string(errLog), "generated")
}
