// File: executor/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package executor

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/failpoint"
	"github.com/momentics/hioload-exec/internal/concurrency"
)

// Fail point names used by HooksFromSet.
const (
	HangAfterThreadsStart       = "hangAfterExecutorThreadsStart"
	HangBeforeSchedulingTask    = "hangBeforeSchedulingExecutorTask"
	HangBeforeLastThreadReturns = "hangBeforeLastExecutorThreadReturns"
)

// Hooks are the fail points instrumented in the Fixed executor. Nil fields
// never pause.
type Hooks struct {
	// Entered once by every worker after it is running.
	AfterThreadsStart *failpoint.FailPoint
	// Entered after a task was accepted and before it is queued.
	BeforeSchedulingTask *failpoint.FailPoint
	// Entered once, by the last worker to exit.
	BeforeLastThreadReturns *failpoint.FailPoint
}

// HooksFromSet binds the hooks to the fail points of s by name.
func HooksFromSet(s *failpoint.Set) *Hooks {
	return &Hooks{
		AfterThreadsStart:       s.Get(HangAfterThreadsStart),
		BeforeSchedulingTask:    s.Get(HangBeforeSchedulingTask),
		BeforeLastThreadReturns: s.Get(HangBeforeLastThreadReturns),
	}
}

// Option configures an executor.
type Option func(*options)

type options struct {
	name    string
	logger  *zap.Logger
	metrics api.ExecutorMetrics
	hooks   *Hooks
	pin     bool
	// pinThread binds the calling worker's OS thread to a CPU.
	pinThread func(cpu int) error
}

func newOptions(defaultName string, opts []Option) options {
	o := options{
		name:    defaultName,
		logger:  zap.NewNop(),
		metrics: api.NopMetrics{},
		hooks:   &Hooks{},

		pinThread: concurrency.PinCurrentThread,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With(zap.String("executor", o.name))
	return o
}

// WithName labels logs, metrics and stats.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the telemetry sink. Defaults to api.NopMetrics.
func WithMetrics(m api.ExecutorMetrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithHooks installs fail points.
func WithHooks(h *Hooks) Option {
	return func(o *options) {
		if h != nil {
			o.hooks = h
		}
	}
}

// WithPinning pins every Fixed worker thread to its own CPU. Start fails
// with ErrThreadCreationFailed when pinning is not possible.
func WithPinning(pin bool) Option {
	return func(o *options) {
		o.pin = pin
	}
}

// rejection returns the status handed to tasks refused in state st.
func rejection(name string, st api.State) *api.Error {
	if st == api.StateNotStarted {
		return api.ErrNotStarted.WithContext("executor", name)
	}
	return api.ErrInShutdown.WithContext("executor", name)
}
