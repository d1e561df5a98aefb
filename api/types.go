// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations: tasks, lifecycle states, pool limits.

package api

import "fmt"

// Task is a unit of work invoked exactly once with its completion status.
// A nil status means the task was accepted and is running normally; any
// other status is a rejection the task must handle itself.
type Task func(status error)

// State enumerates the lifecycle of an executor. Transitions only move
// forward: NotStarted -> Running -> ShuttingDown -> Shutdown.
type State int32

const (
	StateNotStarted State = iota
	StateRunning
	StateShuttingDown
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// ThreadPoolLimits bounds the number of worker threads of a pooled executor.
type ThreadPoolLimits struct {
	MinThreads int `mapstructure:"min-threads" yaml:"min-threads"`
	MaxThreads int `mapstructure:"max-threads" yaml:"max-threads"`
}

// FixedLimits returns limits for a fixed-size pool of n threads.
func FixedLimits(n int) ThreadPoolLimits {
	return ThreadPoolLimits{MinThreads: n, MaxThreads: n}
}

// Validate checks the limits describe a usable pool.
func (l ThreadPoolLimits) Validate() error {
	if l.MinThreads < 1 {
		return ErrInvalidArgument.WithContext("min-threads", l.MinThreads)
	}
	if l.MaxThreads < l.MinThreads {
		return ErrInvalidArgument.WithContext("max-threads", l.MaxThreads)
	}
	return nil
}

// IsFixed reports whether the pool never grows or shrinks.
func (l ThreadPoolLimits) IsFixed() bool {
	return l.MinThreads == l.MaxThreads
}

func (l ThreadPoolLimits) String() string {
	return fmt.Sprintf("{min: %d, max: %d}", l.MinThreads, l.MaxThreads)
}
