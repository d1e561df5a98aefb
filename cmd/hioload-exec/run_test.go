package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/control"
	"github.com/momentics/hioload-exec/executor"
	"github.com/momentics/hioload-exec/internal/session"
	"github.com/momentics/hioload-exec/internal/transport"
	"github.com/momentics/hioload-exec/reactor"
)

func TestStartReactorStopsOnce(t *testing.T) {
	loop := reactor.New()
	stop := startReactor(loop, control.ReactorConfig{RunFor: 5 * time.Millisecond})
	require.Eventually(t, func() bool { return loop.State() == api.ReactorRunning }, 5*time.Second, time.Millisecond)

	assert.NoError(t, stop())
	assert.Equal(t, api.ReactorStopped, loop.State())
	assert.NoError(t, stop())
}

func TestServeSessionsReportsOpenFailure(t *testing.T) {
	pool := executor.NewFixed(api.FixedLimits(1))
	require.NoError(t, pool.Start())
	defer pool.Close()

	loop := reactor.New()
	stop := startReactor(loop, control.ReactorConfig{AllowRun: true})
	layer := transport.NewLayer(loop, session.NewManager(0, nil), nil)
	layer.Shutdown()

	sim := control.SimulationConfig{Sessions: 2, Rounds: 1, Interval: time.Millisecond}
	err := serveSessions(context.Background(), pool, layer, sim)
	assert.ErrorIs(t, err, api.ErrInShutdown)
	assert.Zero(t, layer.Sessions().Len())

	require.NoError(t, stop())
	assert.Equal(t, api.ReactorStopped, loop.State())
	require.NoError(t, pool.Shutdown(time.Second))
	assert.Zero(t, pool.Stats().LiveWorkers)
}
