package failpoint_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-exec/failpoint"
)

func TestNilFailPointNeverPauses(t *testing.T) {
	var fp *failpoint.FailPoint
	fp.Pause()
	assert.False(t, fp.Enabled())
	assert.Zero(t, fp.TimesEntered())
	assert.Empty(t, fp.Name())
}

func TestDisabledFailPointDoesNotCount(t *testing.T) {
	fp := failpoint.New("idle")
	fp.Pause()
	fp.Pause()
	assert.Zero(t, fp.TimesEntered())
}

func TestPauseBlocksUntilDisabled(t *testing.T) {
	fp := failpoint.New("hang")
	block := fp.EnableBlock()
	defer block.Close()

	var passed atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		fp.Pause()
		passed.Store(true)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, block.WaitForTimesEntered(ctx, 1))
	assert.False(t, passed.Load())

	block.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("paused goroutine was not released")
	}
	assert.True(t, passed.Load())
	assert.False(t, fp.Enabled())
}

func TestBlockCountsRelativeToEnable(t *testing.T) {
	fp := failpoint.New("relative")

	first := fp.EnableBlock()
	released := make(chan struct{})
	go func() {
		fp.Pause()
		close(released)
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, first.WaitForTimesEntered(ctx, 1))
	first.Close()
	<-released

	second := fp.EnableBlock()
	defer second.Close()
	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	assert.ErrorIs(t, second.WaitForTimesEntered(short, 1), context.DeadlineExceeded)
	assert.EqualValues(t, 1, fp.TimesEntered())
}

func TestWaitForTimesEnteredManyGoroutines(t *testing.T) {
	const n = 8
	fp := failpoint.New("many")
	block := fp.EnableBlock()

	var finished atomic.Int32
	for i := 0; i < n; i++ {
		go func() {
			fp.Pause()
			finished.Add(1)
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, block.WaitForTimesEntered(ctx, n))
	assert.Zero(t, finished.Load())

	block.Close()
	require.Eventually(t, func() bool { return finished.Load() == n }, 5*time.Second, time.Millisecond)
}

func TestSetGetIsStable(t *testing.T) {
	s := failpoint.NewSet()
	a := s.Get("a")
	assert.Same(t, a, s.Get("a"))
	s.Get("b")
	assert.Equal(t, []string{"a", "b"}, s.Names())

	a.Enable()
	snap := s.Snapshot()
	assert.Equal(t, true, snap["a"].(map[string]any)["enabled"])

	s.DisableAll()
	assert.False(t, a.Enabled())
}
