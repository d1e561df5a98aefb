// Package api
// Author: momentics
//
// Executor contract: decides when and on which thread a task runs.

package api

import "time"

// Executor abstracts inline and pooled task execution.
type Executor interface {
	// Start makes the executor accept tasks.
	Start() error

	// Schedule runs task, inline or on a worker. It never blocks on the
	// pool and never fails to the caller: a task that cannot be accepted
	// is invoked with ErrNotStarted or ErrInShutdown instead.
	Schedule(task Task)

	// RunOnDataAvailable schedules task once session reports readable data.
	// The task never runs on the goroutine that signaled readiness.
	RunOnDataAvailable(session Session, task Task)

	// Shutdown stops accepting tasks and waits up to timeout for accepted
	// work to drain. ErrShutdownTimeout leaves the executor draining.
	Shutdown(timeout time.Duration) error

	// State reports the current lifecycle state.
	State() State
}
