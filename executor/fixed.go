// File: executor/fixed.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed owns a fixed-size pool of worker threads fed from a FIFO queue.
// Tasks are accepted in order; tasks handed to different workers run in
// parallel with no ordering between them.

package executor

import (
	"context"
	"fmt"
	"math"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jacobsa/syncutil"
	"go.uber.org/zap"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/internal/concurrency"
)

const unboundedTimeout = time.Duration(math.MaxInt64)

// Fixed is a pooled executor: NotStarted -> Running -> ShuttingDown -> Shutdown.
type Fixed struct {
	opts   options
	limits api.ThreadPoolLimits

	// Serializes Start and the state decisions of Shutdown.
	lifecycle sync.Mutex

	// Written under mu, read lock-free by State.
	state atomic.Int32

	mu syncutil.InvariantMutex
	// Signaled when a task is queued or the executor begins shutting down.
	cond *sync.Cond

	// GUARDED_BY(mu)
	queue *concurrency.TaskQueue[api.Task]
	// Accepted tasks not yet picked up by a worker, including tasks still
	// on their way into the queue.
	//
	// GUARDED_BY(mu)
	pending int
	// GUARDED_BY(mu)
	running int
	// GUARDED_BY(mu)
	liveWorkers int
	// GUARDED_BY(mu)
	threadIDs []uint64

	// Set once by Start, under lifecycle.
	group *concurrency.WorkerGroup

	accepted  atomic.Int64
	completed atomic.Int64
	rejected  atomic.Int64
	panics    atomic.Int64
}

var _ api.Executor = (*Fixed)(nil)

// NewFixed creates a stopped pooled executor. Only fixed-size limits
// (MinThreads == MaxThreads) are supported; others fail Start.
func NewFixed(limits api.ThreadPoolLimits, opts ...Option) *Fixed {
	e := &Fixed{
		opts:   newOptions("fixed", opts),
		limits: limits,
		queue:  concurrency.NewTaskQueue[api.Task](),
	}
	e.mu = syncutil.NewInvariantMutex(e.checkInvariants)
	e.cond = sync.NewCond(&e.mu)
	return e
}

// Name returns the executor label.
func (e *Fixed) Name() string {
	return e.opts.name
}

// Limits returns the configured pool limits.
func (e *Fixed) Limits() api.ThreadPoolLimits {
	return e.limits
}

// State reports the current lifecycle state.
func (e *Fixed) State() api.State {
	return api.State(e.state.Load())
}

// LOCKS_REQUIRED(e.mu)
func (e *Fixed) setState(st api.State) {
	e.state.Store(int32(st))
}

// Start spawns the worker threads and returns once all of them are running.
//
// LOCKS_EXCLUDED(e.mu)
func (e *Fixed) Start() error {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if st := e.State(); st != api.StateNotStarted || e.group != nil {
		return api.ErrAlreadyStarted.WithContext("state", st.String())
	}

	if err := e.validateLimits(); err != nil {
		e.mu.Lock()
		e.setState(api.StateShutdown)
		e.mu.Unlock()
		e.opts.logger.Error("executor start failed", zap.Error(err))
		return err
	}

	n := e.limits.MaxThreads
	e.group = concurrency.NewWorkerGroup()
	ready := make(chan error, n)
	for i := 0; i < n; i++ {
		id := i
		if err := e.group.Go(func() error { return e.workerLoop(id, ready) }); err != nil {
			ready <- err
		}
	}
	e.group.Seal()

	var startErr error
	for i := 0; i < n; i++ {
		if err := <-ready; err != nil && startErr == nil {
			startErr = err
		}
	}

	e.mu.Lock()
	if startErr != nil {
		// Release the workers that did start and join them before
		// reporting the failure.
		e.setState(api.StateShuttingDown)
		e.cond.Broadcast()
		e.mu.Unlock()
		_ = e.group.Wait()
		e.mu.Lock()
		e.setState(api.StateShutdown)
		e.mu.Unlock()
		e.opts.logger.Error("executor start failed", zap.Error(startErr))
		return api.ErrThreadCreationFailed.
			WithContext("executor", e.opts.name).
			WithContext("threads", n).
			WithCause(startErr)
	}
	e.setState(api.StateRunning)
	e.mu.Unlock()

	e.opts.metrics.WorkerThreads(e.opts.name, n)
	e.opts.logger.Info("executor started",
		zap.Int("threads", n),
		zap.Bool("pinned", e.opts.pin))
	return nil
}

func (e *Fixed) validateLimits() error {
	if err := e.limits.Validate(); err != nil {
		return api.ErrThreadCreationFailed.
			WithContext("limits", e.limits.String()).
			WithCause(err)
	}
	if !e.limits.IsFixed() {
		return api.ErrThreadCreationFailed.
			WithContext("limits", e.limits.String()).
			WithCause(api.ErrNotSupported.WithContext("reason", "pool must be fixed-size"))
	}
	return nil
}

// Schedule queues task for any idle worker. Outside Running the task is
// invoked inline with ErrNotStarted or ErrInShutdown.
//
// LOCKS_EXCLUDED(e.mu)
func (e *Fixed) Schedule(task api.Task) {
	hook := e.opts.hooks.BeforeSchedulingTask

	e.mu.Lock()
	if st := e.State(); st != api.StateRunning {
		e.mu.Unlock()
		e.reject(task, st)
		return
	}
	e.pending++
	e.accepted.Add(1)
	if !hook.Enabled() {
		e.enqueueLocked(task)
		e.mu.Unlock()
		e.opts.metrics.TaskScheduled(e.opts.name)
		return
	}
	e.mu.Unlock()
	e.opts.metrics.TaskScheduled(e.opts.name)

	// Accepted: shutdown now waits for this task even though no worker
	// can see it yet.
	hook.Pause()

	e.mu.Lock()
	e.enqueueLocked(task)
	e.mu.Unlock()
}

// LOCKS_REQUIRED(e.mu)
func (e *Fixed) enqueueLocked(task api.Task) {
	e.queue.Push(task)
	e.cond.Signal()
	e.opts.metrics.QueueDepth(e.opts.name, e.queue.Len())
}

// RunOnDataAvailable schedules task on a worker once session reports data.
// The readiness callback only queues the task, so the signaling goroutine
// never runs it.
func (e *Fixed) RunOnDataAvailable(session api.Session, task api.Task) {
	if st := e.State(); st != api.StateRunning {
		e.reject(task, st)
		return
	}
	session.OnDataAvailable(func(status error) {
		if status == nil {
			e.Schedule(task)
			return
		}
		e.Schedule(func(rejected error) {
			if rejected != nil {
				task(rejected)
				return
			}
			task(status)
		})
	})
}

// Shutdown stops accepting tasks and waits up to timeout for accepted
// tasks to finish and every worker to exit. On ErrShutdownTimeout the pool
// keeps draining in the background; call Shutdown again or
// WaitForQuiescence to observe completion.
//
// LOCKS_EXCLUDED(e.mu)
func (e *Fixed) Shutdown(timeout time.Duration) error {
	e.lifecycle.Lock()
	e.mu.Lock()
	switch e.State() {
	case api.StateNotStarted:
		e.setState(api.StateShutdown)
		e.mu.Unlock()
		e.lifecycle.Unlock()
		e.opts.logger.Info("executor shut down before start")
		return nil
	case api.StateShutdown:
		e.mu.Unlock()
		e.lifecycle.Unlock()
		return nil
	case api.StateRunning:
		e.setState(api.StateShuttingDown)
		e.cond.Broadcast()
		e.opts.logger.Info("executor shutting down",
			zap.Duration("timeout", timeout),
			zap.Int("pending", e.pending),
			zap.Int("running", e.running))
	}
	group := e.group
	e.mu.Unlock()
	e.lifecycle.Unlock()

	joined, err := group.WaitTimeout(timeout)
	if !joined {
		e.mu.Lock()
		live, pending, running := e.liveWorkers, e.pending, e.running
		e.mu.Unlock()
		e.opts.logger.Warn("executor shutdown timed out",
			zap.Duration("timeout", timeout),
			zap.Int("liveWorkers", live),
			zap.Int("pending", pending),
			zap.Int("running", running))
		return api.ErrShutdownTimeout.
			WithContext("executor", e.opts.name).
			WithContext("timeout", timeout.String()).
			WithContext("liveWorkers", live)
	}
	e.markShutdown()
	if err != nil {
		return fmt.Errorf("executor %s: worker failed: %w", e.opts.name, err)
	}
	return nil
}

// WaitForQuiescence blocks until every worker has exited after a shutdown
// was initiated, or ctx ends. It returns nil immediately for an executor
// that never started and ErrInvalidArgument for one still Running, since
// its workers would never exit.
func (e *Fixed) WaitForQuiescence(ctx context.Context) error {
	e.lifecycle.Lock()
	group := e.group
	e.lifecycle.Unlock()
	if group == nil {
		return nil
	}
	if st := e.State(); st == api.StateRunning {
		return api.ErrInvalidArgument.
			WithContext("executor", e.opts.name).
			WithContext("state", st.String())
	}
	if err := group.WaitContext(ctx); err != nil {
		if ctx.Err() != nil {
			return err
		}
		e.markShutdown()
		return fmt.Errorf("executor %s: worker failed: %w", e.opts.name, err)
	}
	e.markShutdown()
	return nil
}

// Close shuts down without a deadline, so no worker outlives it.
func (e *Fixed) Close() error {
	return e.Shutdown(unboundedTimeout)
}

// LOCKS_EXCLUDED(e.mu)
func (e *Fixed) markShutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.State() == api.StateShuttingDown {
		e.setState(api.StateShutdown)
		e.opts.logger.Info("executor shut down")
	}
}

// Stats returns a snapshot of the pool.
//
// LOCKS_EXCLUDED(e.mu)
func (e *Fixed) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Name:        e.opts.name,
		State:       e.State().String(),
		Threads:     e.limits.MaxThreads,
		LiveWorkers: e.liveWorkers,
		Queued:      e.queue.Len(),
		Running:     e.running,
		Accepted:    e.accepted.Load(),
		Completed:   e.completed.Load(),
		Rejected:    e.rejected.Load(),
		Panics:      e.panics.Load(),
		WorkerTIDs:  append([]uint64(nil), e.threadIDs...),
	}
}

// workerLoop is the body of one worker thread.
//
// LOCKS_EXCLUDED(e.mu)
func (e *Fixed) workerLoop(id int, ready chan<- error) error {
	if e.opts.pin {
		if err := e.opts.pinThread(id); err != nil {
			err = fmt.Errorf("pin worker %d: %w", id, err)
			ready <- err
			return err
		}
	}

	e.mu.Lock()
	e.liveWorkers++
	e.threadIDs = append(e.threadIDs, concurrency.ThreadID())
	e.mu.Unlock()
	ready <- nil

	e.opts.hooks.AfterThreadsStart.Pause()

	for {
		task, ok := e.next()
		if !ok {
			break
		}
		e.execute(id, task)
	}

	e.mu.Lock()
	e.liveWorkers--
	live := e.liveWorkers
	e.mu.Unlock()
	e.opts.metrics.WorkerThreads(e.opts.name, live)
	e.opts.logger.Debug("worker exiting", zap.Int("worker", id), zap.Int("remaining", live))

	if live == 0 {
		e.opts.hooks.BeforeLastThreadReturns.Pause()
	}
	return nil
}

// next blocks until a task is available. It reports false once the
// executor is shutting down and every accepted task has been picked up.
//
// LOCKS_EXCLUDED(e.mu)
func (e *Fixed) next() (api.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		if task, ok := e.queue.Pop(); ok {
			e.pending--
			e.running++
			if e.State() >= api.StateShuttingDown && e.pending == 0 {
				// Idle workers may now exit.
				e.cond.Broadcast()
			}
			e.opts.metrics.QueueDepth(e.opts.name, e.queue.Len())
			return task, true
		}
		if e.State() >= api.StateShuttingDown && e.pending == 0 {
			return nil, false
		}
		e.cond.Wait()
	}
}

// LOCKS_EXCLUDED(e.mu)
func (e *Fixed) execute(worker int, task api.Task) {
	start := time.Now()
	panicked := false
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			e.panics.Add(1)
			e.opts.logger.Error("task panicked",
				zap.Int("worker", worker),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
		e.mu.Lock()
		e.running--
		e.mu.Unlock()
		e.completed.Add(1)
		e.opts.metrics.TaskCompleted(e.opts.name, time.Since(start), panicked)
	}()
	task(nil)
}

func (e *Fixed) reject(task api.Task, st api.State) {
	status := rejection(e.opts.name, st)
	e.rejected.Add(1)
	e.opts.metrics.TaskRejected(e.opts.name, status.Code)
	task(status)
}

// checkInvariants panics if the pool bookkeeping is inconsistent. Only
// called when syncutil invariant checking is enabled.
//
// LOCKS_REQUIRED(e.mu)
func (e *Fixed) checkInvariants() {
	// INVARIANT: pending >= queue.Len() >= 0
	if e.pending < e.queue.Len() {
		panic(fmt.Sprintf("pending %d < queued %d", e.pending, e.queue.Len()))
	}

	// INVARIANT: running >= 0
	if e.running < 0 {
		panic(fmt.Sprintf("negative running count %d", e.running))
	}

	// INVARIANT: 0 <= liveWorkers <= MaxThreads
	if e.liveWorkers < 0 || e.liveWorkers > e.limits.MaxThreads {
		panic(fmt.Sprintf("live workers %d outside [0, %d]", e.liveWorkers, e.limits.MaxThreads))
	}

	// INVARIANT: State() == Shutdown implies liveWorkers == 0 && pending == 0
	if e.State() == api.StateShutdown && (e.liveWorkers != 0 || e.pending != 0) {
		panic(fmt.Sprintf("shut down with %d workers and %d pending tasks", e.liveWorkers, e.pending))
	}
}
