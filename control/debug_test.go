package control_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-exec/control"
)

func TestDebugProbesYAML(t *testing.T) {
	dp := control.NewDebugProbes()
	control.RegisterPlatformProbes(dp)
	dp.RegisterProbe("executor", func() any {
		return map[string]any{"state": "running", "threads": 2}
	})
	assert.Contains(t, dp.Names(), "platform.cpus")

	var buf bytes.Buffer
	require.NoError(t, dp.WriteYAML(&buf))

	var out map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "running", out["executor"].(map[string]any)["state"])
	assert.Greater(t, out["platform.cpus"], 0)
}
