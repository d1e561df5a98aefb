package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/momentics/hioload-exec/internal/logger"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":      zapcore.InfoLevel,
		"DEBUG": zapcore.DebugLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := logger.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := logger.ParseLevel("loud")
	assert.Error(t, err)
}

func TestFileLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exec.log")
	l, err := logger.New(logger.Config{Level: "debug", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	l.Debug("executor started")
	require.NoError(t, l.SetLevel("error"))
	l.Info("suppressed")
	require.NoError(t, l.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"executor started"`)
	assert.Contains(t, string(raw), `"level":"DEBUG"`)
	assert.NotContains(t, string(raw), "suppressed")
}

func TestUnknownFormat(t *testing.T) {
	_, err := logger.New(logger.Config{Format: "xml"})
	assert.Error(t, err)
}
