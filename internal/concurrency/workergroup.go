// File: internal/concurrency/workergroup.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WorkerGroup owns a set of worker goroutines, each locked to its own OS
// thread for its whole life. Workers are joined on every exit path: once the
// group is sealed, Done is closed when the last worker returns.

package concurrency

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// WorkerGroup spawns and joins dedicated worker threads.
type WorkerGroup struct {
	g    errgroup.Group
	mu   sync.Mutex
	done chan struct{}
	err  error // set before done is closed

	sealed  bool // GUARDED_BY(mu)
	spawned int  // GUARDED_BY(mu)
	live    atomic.Int32
}

// NewWorkerGroup creates an empty, unsealed group.
func NewWorkerGroup() *WorkerGroup {
	return &WorkerGroup{done: make(chan struct{})}
}

// Go starts fn on a new goroutine locked to a fresh OS thread. The thread
// is released to the OS when fn returns. The first non-nil error returned
// by any worker is reported by Wait.
func (w *WorkerGroup) Go(fn func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sealed {
		return ErrGroupSealed
	}
	w.spawned++
	w.live.Add(1)
	w.g.Go(func() error {
		// No matching UnlockOSThread: the thread exits with the worker.
		runtime.LockOSThread()
		defer w.live.Add(-1)
		return fn()
	})
	return nil
}

// Seal forbids further workers and arms Done. Idempotent.
func (w *WorkerGroup) Seal() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sealed {
		return
	}
	w.sealed = true
	go func() {
		w.err = w.g.Wait()
		close(w.done)
	}()
}

// Done is closed once the group is sealed and every worker has returned.
func (w *WorkerGroup) Done() <-chan struct{} {
	return w.done
}

// Live returns the number of workers that have not returned yet.
func (w *WorkerGroup) Live() int {
	return int(w.live.Load())
}

// Spawned returns the number of workers ever started.
func (w *WorkerGroup) Spawned() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.spawned
}

// Wait seals the group and blocks until every worker has returned.
func (w *WorkerGroup) Wait() error {
	w.Seal()
	<-w.done
	return w.err
}

// WaitTimeout seals the group and waits up to d for every worker to return.
// It reports whether the group was joined.
func (w *WorkerGroup) WaitTimeout(d time.Duration) (bool, error) {
	w.Seal()
	if d <= 0 {
		select {
		case <-w.done:
			return true, w.err
		default:
			return false, nil
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-w.done:
		return true, w.err
	case <-t.C:
		return false, nil
	}
}

// WaitContext seals the group and waits until every worker has returned or
// ctx ends.
func (w *WorkerGroup) WaitContext(ctx context.Context) error {
	w.Seal()
	select {
	case <-w.done:
		return w.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
