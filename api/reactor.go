// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Defines the abstract interface for the event loop used by async-capable
// executors to multiplex waiting and dispatch. Any goroutine may drive it.

package api

import "time"

// ReactorState enumerates the lifecycle of a reactor loop.
type ReactorState int32

const (
	ReactorIdle ReactorState = iota
	ReactorRunning
	ReactorStopped
)

func (s ReactorState) String() string {
	switch s {
	case ReactorIdle:
		return "idle"
	case ReactorRunning:
		return "running"
	case ReactorStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Reactor defines the common interface for a bounded-time event loop.
type Reactor interface {
	// Run drives the loop until Stop. Implementations may return
	// ErrNotSupported without driving.
	Run() error

	// RunFor drives the loop for up to d. A non-nil result is an
	// ErrReactorFault the owner must escalate.
	RunFor(d time.Duration) error

	// Stop makes any in-progress or future Run/RunFor return promptly.
	Stop()

	// Drain synchronously runs all queued work without waiting for more,
	// then stops the loop.
	Drain()

	// Schedule posts task to a later turn of the loop.
	Schedule(task Task)

	// Dispatch runs task inline when called on the driving thread and
	// posts it otherwise.
	Dispatch(task Task)

	// OnReactorThread reports whether the caller is driving the loop.
	OnReactorThread() bool

	// Now returns the reactor's time source.
	Now() time.Time

	// MakeTimer returns a timer firing on this loop.
	MakeTimer() (ReactorTimer, error)
}

// ReactorTimer fires a task on its reactor at a deadline.
type ReactorTimer interface {
	// WaitUntil arms the timer. Re-arming cancels the previous task.
	WaitUntil(deadline time.Time, task Task)

	// Cancel invokes a pending task with ErrCallbackCanceled.
	Cancel()
}
