package adapters_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/momentics/hioload-exec/adapters"
	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/control"
	"github.com/momentics/hioload-exec/executor"
	"github.com/momentics/hioload-exec/internal/logger"
)

func newControl(t *testing.T, mutate func(*control.Config)) (*adapters.ControlAdapter, *logger.Logger) {
	t.Helper()
	cfg, _, err := control.Load("", nil)
	require.NoError(t, err)
	if mutate != nil {
		mutate(cfg)
	}
	log, err := logger.New(logger.Config{Level: "info", File: t.TempDir() + "/test.log"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })

	c, err := adapters.NewControlAdapter(*cfg, log, prometheus.NewRegistry())
	require.NoError(t, err)
	return c, log
}

func TestControlAdapterReloadChangesLogLevel(t *testing.T) {
	c, log := newControl(t, nil)
	assert.Equal(t, zapcore.InfoLevel, log.Level.Level())

	next := c.Config().Snapshot()
	next.Log.Level = "debug"
	require.NoError(t, c.Config().Set(next))
	assert.Equal(t, zapcore.DebugLevel, log.Level.Level())
}

func TestControlAdapterStats(t *testing.T) {
	c, _ := newControl(t, func(cfg *control.Config) {
		cfg.Executor.FailPoints = []string{executor.HangAfterThreadsStart}
	})

	p, err := adapters.NewExecutor(control.ExecutorConfig{
		Kind:             control.KindFixed,
		Name:             "pool",
		ThreadPoolLimits: api.FixedLimits(2),
	}, c.Deps())
	require.NoError(t, err)
	require.NoError(t, p.Start())
	defer p.Close()
	c.RegisterExecutor(p)

	stats := c.Stats()
	require.Contains(t, stats, "executor.pool")
	assert.Equal(t, 2, stats["executor.pool"].(executor.Stats).LiveWorkers)
	assert.Contains(t, stats["failpoints"], executor.HangAfterThreadsStart)
	assert.Contains(t, stats, "platform.cpus")
}
