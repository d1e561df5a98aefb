// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"
	"time"

	"github.com/momentics/hioload-exec/api"
)

// FakeReactor is a manually stepped api.Reactor. Posted tasks run only
// when the test calls RunFor or Drain, on the calling goroutine. It has no
// timers and no unbounded Run.
type FakeReactor struct {
	mu      sync.Mutex
	queue   []api.Task
	stopped bool
	now     time.Time
}

var _ api.Reactor = (*FakeReactor)(nil)

// NewFakeReactor returns a reactor whose clock reads now.
func NewFakeReactor(now time.Time) *FakeReactor {
	return &FakeReactor{now: now}
}

func (f *FakeReactor) Run() error {
	return api.ErrNotSupported.WithContext("operation", "run")
}

// RunFor runs the tasks queued so far and returns without waiting.
func (f *FakeReactor) RunFor(time.Duration) error {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return nil
	}
	batch := f.queue
	f.queue = nil
	f.mu.Unlock()

	for _, task := range batch {
		task(nil)
	}
	return nil
}

func (f *FakeReactor) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *FakeReactor) Drain() {
	for {
		f.mu.Lock()
		if len(f.queue) == 0 {
			f.stopped = true
			f.mu.Unlock()
			return
		}
		task := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()
		task(nil)
	}
}

func (f *FakeReactor) Schedule(task api.Task) {
	f.mu.Lock()
	f.queue = append(f.queue, task)
	f.mu.Unlock()
}

func (f *FakeReactor) Dispatch(task api.Task) { f.Schedule(task) }

func (f *FakeReactor) OnReactorThread() bool { return false }

func (f *FakeReactor) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the reactor clock forward.
func (f *FakeReactor) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func (f *FakeReactor) MakeTimer() (api.ReactorTimer, error) {
	return nil, api.ErrNotSupported.WithContext("operation", "timer")
}

// Queued returns the number of tasks waiting to run.
func (f *FakeReactor) Queued() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}
