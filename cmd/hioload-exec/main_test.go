package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-file", filepath.Join(t.TempDir(), "run.log")))
	require.NoError(t, cmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestRunFixed(t *testing.T) {
	out := execute(t, "run", "--executor=fixed", "--threads=2", "--sessions=3", "--rounds=2", "--interval=1ms")

	var dump map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &dump))
	stats := dump["executor.fixed"].(map[string]any)
	assert.Equal(t, "shutdown", stats["state"])
	assert.Equal(t, 6, stats["completed"])
	assert.Equal(t, 0, stats["liveWorkers"])
	assert.Equal(t, 6, dump["transport.signals"])
}

func TestRunSynchronous(t *testing.T) {
	out := execute(t, "run", "--executor=synchronous", "--sessions=2", "--rounds=3", "--interval=1ms")

	var dump map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &dump))
	stats := dump["executor.synchronous"].(map[string]any)
	assert.Equal(t, "shutdown", stats["state"])
	assert.Equal(t, 6, stats["completed"])
}

func TestConfigCommand(t *testing.T) {
	out := execute(t, "config", "--threads=3")

	var cfg map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	exec := cfg["executor"].(map[string]any)
	assert.Equal(t, "fixed", exec["kind"])
	assert.Equal(t, 3, exec["max-threads"])
}
