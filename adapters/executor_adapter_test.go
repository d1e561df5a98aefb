package adapters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-exec/adapters"
	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/control"
	"github.com/momentics/hioload-exec/executor"
)

func TestNewExecutorKinds(t *testing.T) {
	fixed, err := adapters.NewExecutor(control.ExecutorConfig{
		Kind:             control.KindFixed,
		ThreadPoolLimits: api.FixedLimits(1),
	}, adapters.Deps{})
	require.NoError(t, err)
	assert.IsType(t, &executor.Fixed{}, fixed)
	assert.Equal(t, "fixed", fixed.Name())

	sync, err := adapters.NewExecutor(control.ExecutorConfig{
		Kind: control.KindSynchronous,
		Name: "inline",
	}, adapters.Deps{})
	require.NoError(t, err)
	assert.IsType(t, &executor.Synchronous{}, sync)
	assert.Equal(t, "inline", sync.Name())

	_, err = adapters.NewExecutor(control.ExecutorConfig{Kind: "elastic"}, adapters.Deps{})
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}
