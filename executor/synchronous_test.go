package executor_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/executor"
	"github.com/momentics/hioload-exec/fake"
	"github.com/momentics/hioload-exec/internal/concurrency"
	"github.com/momentics/hioload-exec/internal/session"
)

func TestSynchronousBasicTaskRuns(t *testing.T) {
	e := executor.NewSynchronous()
	require.NoError(t, e.Start())
	defer e.Close()

	rec := fake.NewTaskRecorder()
	e.Schedule(rec.Task())

	// Inline: done before Schedule returns.
	require.Equal(t, 1, rec.Calls())
	assert.NoError(t, rec.Status(0))
	assert.Equal(t, api.StateRunning, e.State())
}

func TestSynchronousScheduleFailsBeforeStartup(t *testing.T) {
	e := executor.NewSynchronous()
	rec := fake.NewTaskRecorder()
	e.Schedule(rec.Task())

	require.Equal(t, 1, rec.Calls())
	assert.ErrorIs(t, rec.Status(0), api.ErrNotStarted)
	assert.EqualValues(t, 1, e.Stats().Rejected)
}

func TestSynchronousScheduleFailsAfterShutdown(t *testing.T) {
	e := executor.NewSynchronous()
	require.NoError(t, e.Start())
	require.NoError(t, e.Shutdown(0))
	assert.Equal(t, api.StateShutdown, e.State())

	rec := fake.NewTaskRecorder()
	e.Schedule(rec.Task())
	require.Equal(t, 1, rec.Calls())
	assert.ErrorIs(t, rec.Status(0), api.ErrInShutdown)

	// Shutdown is idempotent; restart is not allowed.
	assert.NoError(t, e.Shutdown(0))
	assert.ErrorIs(t, e.Start(), api.ErrAlreadyStarted)
}

func TestSynchronousStartTwice(t *testing.T) {
	e := executor.NewSynchronous()
	require.NoError(t, e.Start())
	assert.ErrorIs(t, e.Start(), api.ErrAlreadyStarted)
}

func TestSynchronousRecoversPanics(t *testing.T) {
	e := executor.NewSynchronous()
	require.NoError(t, e.Start())

	e.Schedule(func(error) { panic("task failure") })
	rec := fake.NewTaskRecorder()
	e.Schedule(rec.Task())

	assert.Equal(t, 1, rec.Calls())
	st := e.Stats()
	assert.EqualValues(t, 1, st.Panics)
	assert.EqualValues(t, 2, st.Completed)
}

func TestSynchronousRunTaskAfterWaitingForData(t *testing.T) {
	if !concurrency.ThreadIDSupported {
		t.Skip("thread ids unavailable")
	}
	e := executor.NewSynchronous()
	require.NoError(t, e.Start())
	sess := session.New("sync-data", nil)

	signaled := make(chan uint64, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		// Wait for the registration so the signal is not just latched.
		for sess.Waiting() == 0 {
			runtime.Gosched()
		}
		signaled <- concurrency.ThreadID()
		sess.SignalAvailableData()
	}()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	rec := fake.NewTaskRecorder()
	e.RunOnDataAvailable(sess, rec.Task())

	require.Equal(t, 1, rec.Calls())
	assert.NoError(t, rec.Status(0))
	assert.NotEqual(t, <-signaled, rec.ThreadID(0))
	assert.Equal(t, concurrency.ThreadID(), rec.ThreadID(0))
}

func TestSynchronousRunOnDataAvailableClosedSession(t *testing.T) {
	e := executor.NewSynchronous()
	require.NoError(t, e.Start())
	sess := session.New("closed", nil)
	sess.Cancel()

	rec := fake.NewTaskRecorder()
	e.RunOnDataAvailable(sess, rec.Task())
	require.Equal(t, 1, rec.Calls())
	assert.ErrorIs(t, rec.Status(0), api.ErrSessionClosed)
}

func TestSynchronousRunOnDataAvailableBeforeStart(t *testing.T) {
	e := executor.NewSynchronous()
	sess := session.New("early", nil)

	rec := fake.NewTaskRecorder()
	e.RunOnDataAvailable(sess, rec.Task())
	require.Equal(t, 1, rec.Calls())
	assert.ErrorIs(t, rec.Status(0), api.ErrNotStarted)
	assert.Zero(t, sess.Waiting())
}
