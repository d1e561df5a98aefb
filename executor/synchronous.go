// File: executor/synchronous.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Synchronous runs every accepted task inline on the calling goroutine.
// There is no pool to drain, so shutdown completes immediately.

package executor

import (
	"runtime/debug"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/momentics/hioload-exec/api"
)

// Synchronous is an inline executor: NotStarted -> Running -> Shutdown.
type Synchronous struct {
	opts  options
	state atomic.Int32

	running   atomic.Int64
	accepted  atomic.Int64
	completed atomic.Int64
	rejected  atomic.Int64
	panics    atomic.Int64
}

var _ api.Executor = (*Synchronous)(nil)

// NewSynchronous creates a stopped synchronous executor.
func NewSynchronous(opts ...Option) *Synchronous {
	return &Synchronous{opts: newOptions("synchronous", opts)}
}

// Name returns the executor label.
func (e *Synchronous) Name() string {
	return e.opts.name
}

// State reports the current lifecycle state.
func (e *Synchronous) State() api.State {
	return api.State(e.state.Load())
}

// Start transitions to Running. A second call fails with ErrAlreadyStarted.
func (e *Synchronous) Start() error {
	if !e.state.CompareAndSwap(int32(api.StateNotStarted), int32(api.StateRunning)) {
		return api.ErrAlreadyStarted.WithContext("state", e.State().String())
	}
	e.opts.logger.Info("executor started")
	return nil
}

// Schedule invokes task inline. Before Start or after Shutdown the task is
// invoked inline with a rejection status.
func (e *Synchronous) Schedule(task api.Task) {
	if st := e.State(); st != api.StateRunning {
		e.reject(task, st)
		return
	}
	e.accepted.Add(1)
	e.opts.metrics.TaskScheduled(e.opts.name)
	e.execute(task, nil)
}

// RunOnDataAvailable blocks the caller until session has data, then runs
// task inline on the caller. The signaling goroutine only hands over the
// readiness status.
func (e *Synchronous) RunOnDataAvailable(session api.Session, task api.Task) {
	if st := e.State(); st != api.StateRunning {
		e.reject(task, st)
		return
	}
	ready := make(chan error, 1)
	session.OnDataAvailable(func(status error) {
		ready <- status
	})
	if status := <-ready; status != nil {
		e.accepted.Add(1)
		e.execute(task, status)
		return
	}
	e.Schedule(task)
}

// Shutdown transitions to Shutdown. Nothing runs asynchronously, so it
// always succeeds immediately.
func (e *Synchronous) Shutdown(time.Duration) error {
	for {
		st := e.State()
		if st == api.StateShutdown {
			return nil
		}
		if e.state.CompareAndSwap(int32(st), int32(api.StateShutdown)) {
			e.opts.logger.Info("executor shut down", zap.Int64("inflight", e.running.Load()))
			return nil
		}
	}
}

// Close is Shutdown without a deadline.
func (e *Synchronous) Close() error {
	return e.Shutdown(0)
}

// Stats returns a snapshot of the executor counters.
func (e *Synchronous) Stats() Stats {
	return Stats{
		Name:      e.opts.name,
		State:     e.State().String(),
		Running:   int(e.running.Load()),
		Accepted:  e.accepted.Load(),
		Completed: e.completed.Load(),
		Rejected:  e.rejected.Load(),
		Panics:    e.panics.Load(),
	}
}

func (e *Synchronous) execute(task api.Task, status error) {
	e.running.Add(1)
	start := time.Now()
	panicked := false
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			e.panics.Add(1)
			e.opts.logger.Error("task panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
		e.running.Add(-1)
		e.completed.Add(1)
		e.opts.metrics.TaskCompleted(e.opts.name, time.Since(start), panicked)
	}()
	task(status)
}

func (e *Synchronous) reject(task api.Task, st api.State) {
	status := rejection(e.opts.name, st)
	e.rejected.Add(1)
	e.opts.metrics.TaskRejected(e.opts.name, status.Code)
	task(status)
}
