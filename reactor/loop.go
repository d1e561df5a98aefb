// File: reactor/loop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Loop is a single-owner event loop over a FIFO of posted work and a heap
// of timers. A panic escaping a posted task is a fault: it is returned as
// ErrReactorFault and every later Run/RunFor returns the same fault, so
// the owner decides how to escalate it.

package reactor

import (
	"container/heap"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jacobsa/timeutil"
	"go.uber.org/zap"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/internal/concurrency"
)

// work is a posted task and the status it is invoked with.
type work struct {
	task   api.Task
	status error
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock sets the time source for Now and timers.
func WithClock(c timeutil.Clock) Option {
	return func(l *Loop) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithoutRun makes Run unsupported; only bounded RunFor drives the loop.
func WithoutRun() Option {
	return func(l *Loop) {
		l.runSupported = false
	}
}

// Loop implements api.Reactor.
type Loop struct {
	clock        timeutil.Clock
	logger       *zap.Logger
	runSupported bool

	// Capacity 1: a pending wakeup is never lost and never blocks posters.
	wake chan struct{}

	state  atomic.Int32
	driver atomic.Uint64 // OS thread id of the driving goroutine, 0 when idle

	mu sync.Mutex
	// GUARDED_BY(mu)
	queue *concurrency.TaskQueue[work]
	// GUARDED_BY(mu)
	timers timerHeap
	// GUARDED_BY(mu)
	timerSeq uint64
	// GUARDED_BY(mu)
	stopped bool
	// GUARDED_BY(mu)
	driving bool
	// Signaled when the driver releases the loop.
	released *sync.Cond
	// GUARDED_BY(mu)
	fault error
}

var _ api.Reactor = (*Loop)(nil)

// New creates an idle loop.
func New(opts ...Option) *Loop {
	l := &Loop{
		clock:        timeutil.RealClock(),
		logger:       zap.NewNop(),
		runSupported: true,
		wake:         make(chan struct{}, 1),
		queue:        concurrency.NewTaskQueue[work](),
	}
	l.released = sync.NewCond(&l.mu)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State reports whether the loop is idle, being driven, or stopped.
func (l *Loop) State() api.ReactorState {
	return api.ReactorState(l.state.Load())
}

// Fault returns the sticky fault, if any.
func (l *Loop) Fault() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fault
}

// Pending returns the number of queued tasks and armed timers.
func (l *Loop) Pending() (queued, timers int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queue.Len(), l.timers.Len()
}

// Run drives the loop until Stop.
func (l *Loop) Run() error {
	if !l.runSupported {
		return api.ErrNotSupported.WithContext("operation", "run")
	}
	return l.drive(time.Time{})
}

// RunFor drives the loop for up to d of wall time.
func (l *Loop) RunFor(d time.Duration) error {
	if d < 0 {
		d = 0
	}
	return l.drive(time.Now().Add(d))
}

// Stop makes in-progress and future Run/RunFor calls return until Restart.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	if !l.driving {
		l.state.Store(int32(api.ReactorStopped))
	}
	l.mu.Unlock()
	l.notify()
}

// Restart clears a previous Stop.
func (l *Loop) Restart() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped = false
	if !l.driving {
		l.state.Store(int32(api.ReactorIdle))
	}
}

// Drain runs every queued task, including tasks they post, without waiting
// for timers, then stops the loop. Faults are recorded and logged; draining
// continues past them. Called off the loop while another goroutine drives
// it, Drain stops that driver and waits for it to return first.
func (l *Loop) Drain() {
	if !l.OnReactorThread() {
		l.mu.Lock()
		for l.driving {
			l.stopped = true
			l.notify()
			l.released.Wait()
		}
		l.claimLocked()
		l.mu.Unlock()
		defer l.exit()
	}

	for i := 0; ; i++ {
		l.mu.Lock()
		w, ok := l.queue.Pop()
		l.mu.Unlock()
		if !ok {
			break
		}
		l.logger.Debug("draining reactor task", zap.Int("iteration", i))
		if err := l.invoke(w); err != nil {
			l.logger.Error("fault while draining reactor", zap.Error(err))
		}
	}

	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
}

// Schedule posts task to a later turn of the loop. Posted tasks are
// invoked with a nil status.
func (l *Loop) Schedule(task api.Task) {
	l.post(work{task: task})
}

// Dispatch runs task inline on the driving thread and posts it otherwise.
func (l *Loop) Dispatch(task api.Task) {
	if l.OnReactorThread() {
		task(nil)
		return
	}
	l.post(work{task: task})
}

// OnReactorThread reports whether the caller is the goroutine driving the
// loop. Always false where OS thread ids are unavailable.
func (l *Loop) OnReactorThread() bool {
	if !concurrency.ThreadIDSupported {
		return false
	}
	d := l.driver.Load()
	return d != 0 && d == concurrency.ThreadID()
}

// Now returns the loop's clock reading.
func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

// MakeTimer returns an unarmed timer firing on this loop.
func (l *Loop) MakeTimer() (api.ReactorTimer, error) {
	return &timer{loop: l}, nil
}

func (l *Loop) post(w work) {
	l.mu.Lock()
	l.queue.Push(w)
	l.mu.Unlock()
	l.notify()
}

func (l *Loop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// claimLocked makes the calling goroutine, locked to its OS thread, the
// only driver of the loop.
//
// LOCKS_REQUIRED(l.mu)
func (l *Loop) claimLocked() {
	runtime.LockOSThread()
	l.driving = true
	l.driver.Store(concurrency.ThreadID())
	l.state.Store(int32(api.ReactorRunning))
}

// exit releases a loop claimed with claimLocked.
func (l *Loop) exit() {
	l.mu.Lock()
	l.driver.Store(0)
	l.driving = false
	if l.stopped {
		l.state.Store(int32(api.ReactorStopped))
	} else {
		l.state.Store(int32(api.ReactorIdle))
	}
	l.released.Broadcast()
	l.mu.Unlock()
	runtime.UnlockOSThread()
}

// drive runs the loop until Stop, a fault, or until (when non-zero).
func (l *Loop) drive(until time.Time) error {
	l.mu.Lock()
	if l.fault != nil {
		fault := l.fault
		l.mu.Unlock()
		return fault
	}
	if l.driving {
		l.mu.Unlock()
		return api.ErrNotSupported.WithContext("reason", "loop is already being driven")
	}
	l.claimLocked()
	l.mu.Unlock()
	defer l.exit()

	for {
		l.mu.Lock()
		if l.stopped {
			l.mu.Unlock()
			return nil
		}
		w, ok, nextTimer := l.nextLocked()
		l.mu.Unlock()

		if ok {
			if err := l.invoke(w); err != nil {
				return err
			}
			continue
		}

		wait := time.Duration(-1)
		if !until.IsZero() {
			wait = time.Until(until)
			if wait <= 0 {
				return nil
			}
		}
		if !nextTimer.IsZero() {
			if d := nextTimer.Sub(l.clock.Now()); wait < 0 || d < wait {
				wait = d
			}
		}
		l.sleep(wait)
	}
}

// nextLocked pops the next runnable work: posted tasks first, then the
// earliest due timer. It also returns the deadline of the earliest pending
// timer.
//
// LOCKS_REQUIRED(l.mu)
func (l *Loop) nextLocked() (work, bool, time.Time) {
	if w, ok := l.queue.Pop(); ok {
		return w, true, time.Time{}
	}
	if l.timers.Len() == 0 {
		return work{}, false, time.Time{}
	}
	head := l.timers[0]
	if head.deadline.After(l.clock.Now()) {
		return work{}, false, head.deadline
	}
	heap.Pop(&l.timers)
	head.owner.entry = nil
	return work{task: head.task}, true, time.Time{}
}

// sleep blocks until notified or d elapses. d < 0 means no timeout.
func (l *Loop) sleep(d time.Duration) {
	if d < 0 {
		<-l.wake
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-l.wake:
	case <-t.C:
	}
}

// invoke runs one task, converting an escaped panic into the sticky fault.
func (l *Loop) invoke(w work) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		fault := api.ErrReactorFault.
			WithContext("panic", fmt.Sprint(r)).
			WithContext("thread", concurrency.ThreadID())
		l.logger.Error("uncaught fault in reactor",
			zap.Any("panic", r),
			zap.ByteString("stack", debug.Stack()))
		l.mu.Lock()
		if l.fault == nil {
			l.fault = fault
		}
		l.mu.Unlock()
		err = fault
	}()
	w.task(w.status)
	return nil
}
