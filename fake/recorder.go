// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"context"
	"sync"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/internal/concurrency"
)

// TaskRecorder hands out tasks that record each invocation: the status
// received and the OS thread it ran on.
type TaskRecorder struct {
	mu       sync.Mutex
	statuses []error
	threads  []uint64
	changed  chan struct{}
}

// NewTaskRecorder returns an empty recorder.
func NewTaskRecorder() *TaskRecorder {
	return &TaskRecorder{changed: make(chan struct{})}
}

// Task returns a task that records its invocation.
func (r *TaskRecorder) Task() api.Task {
	return func(status error) {
		tid := concurrency.ThreadID()
		r.mu.Lock()
		r.statuses = append(r.statuses, status)
		r.threads = append(r.threads, tid)
		close(r.changed)
		r.changed = make(chan struct{})
		r.mu.Unlock()
	}
}

// Calls returns the number of recorded invocations.
func (r *TaskRecorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.statuses)
}

// Status returns the status of invocation i.
func (r *TaskRecorder) Status(i int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statuses[i]
}

// ThreadID returns the OS thread id invocation i ran on.
func (r *TaskRecorder) ThreadID(i int) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.threads[i]
}

// Statuses returns a copy of every recorded status.
func (r *TaskRecorder) Statuses() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.statuses...)
}

// Wait blocks until at least n invocations were recorded or ctx ends.
func (r *TaskRecorder) Wait(ctx context.Context, n int) error {
	for {
		r.mu.Lock()
		if len(r.statuses) >= n {
			r.mu.Unlock()
			return nil
		}
		changed := r.changed
		r.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
