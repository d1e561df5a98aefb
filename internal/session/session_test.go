package session_test

import (
	"testing"
	"time"

	"github.com/jacobsa/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/internal/session"
)

func TestAttributesExpire(t *testing.T) {
	clock := &timeutil.SimulatedClock{}
	clock.SetTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	a := session.NewAttributes(clock)
	a.Set("a", 1)
	a.Set("b", 2)
	a.Expire("a", time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, a.Keys())

	clock.AdvanceTime(time.Millisecond)
	_, ok := a.Get("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, a.Keys())
}

func TestSignalFiresRegisteredCallbackOnce(t *testing.T) {
	s := session.New("s1", nil)
	var got []error
	s.OnDataAvailable(func(status error) { got = append(got, status) })
	assert.Equal(t, 1, s.Waiting())

	s.SignalAvailableData()
	s.SignalAvailableData()
	require.Len(t, got, 1)
	assert.NoError(t, got[0])
	assert.Zero(t, s.Waiting())
}

func TestSignalBeforeRegistrationIsLatched(t *testing.T) {
	s := session.New("s1", nil)
	s.SignalAvailableData()

	calls := 0
	s.OnDataAvailable(func(status error) {
		assert.NoError(t, status)
		calls++
	})
	assert.Equal(t, 1, calls)

	// The latch is consumed.
	s.OnDataAvailable(func(error) { calls++ })
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, s.Waiting())
}

func TestCancelFailsPendingAndFutureCallbacks(t *testing.T) {
	s := session.New("s1", nil)
	var pending error
	s.OnDataAvailable(func(status error) { pending = status })

	s.Cancel()
	s.Cancel()
	assert.ErrorIs(t, pending, api.ErrSessionClosed)

	var late error
	s.OnDataAvailable(func(status error) { late = status })
	assert.ErrorIs(t, late, api.ErrSessionClosed)

	select {
	case <-s.Done():
	default:
		t.Fatal("done not closed")
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := session.NewManager(3, nil)

	s, created := m.Create("x")
	require.True(t, created)
	again, created := m.Create("x")
	assert.False(t, created)
	assert.Same(t, s, again)

	opened := m.Open()
	assert.NotEmpty(t, opened.ID())
	assert.Equal(t, 2, m.Len())

	got, ok := m.Get("x")
	require.True(t, ok)
	assert.Same(t, s, got)

	m.Delete("x")
	_, ok = m.Get("x")
	assert.False(t, ok)
	<-s.Done()

	seen := 0
	m.Range(func(*session.Session) { seen++ })
	assert.Equal(t, 1, seen)

	m.CloseAll()
	assert.Zero(t, m.Len())
	<-opened.Done()
}
