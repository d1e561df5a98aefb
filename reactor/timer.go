// File: reactor/timer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import (
	"container/heap"
	"time"

	"github.com/momentics/hioload-exec/api"
)

// timerEntry is one armed timer waiting in the loop's heap.
type timerEntry struct {
	deadline time.Time
	seq      uint64
	task     api.Task
	owner    *timer
	index    int
}

// timerHeap orders entries by deadline, then by arming order.
type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// timer is the api.ReactorTimer handed out by MakeTimer.
type timer struct {
	loop *Loop
	// GUARDED_BY(loop.mu)
	entry *timerEntry
}

var _ api.ReactorTimer = (*timer)(nil)

// WaitUntil arms the timer. A previously armed task is canceled.
//
// LOCKS_EXCLUDED(t.loop.mu)
func (t *timer) WaitUntil(deadline time.Time, task api.Task) {
	l := t.loop
	l.mu.Lock()
	t.cancelLocked()
	l.timerSeq++
	t.entry = &timerEntry{
		deadline: deadline,
		seq:      l.timerSeq,
		task:     task,
		owner:    t,
	}
	heap.Push(&l.timers, t.entry)
	l.mu.Unlock()
	l.notify()
}

// Cancel runs a pending task on the loop with ErrCallbackCanceled.
//
// LOCKS_EXCLUDED(t.loop.mu)
func (t *timer) Cancel() {
	l := t.loop
	l.mu.Lock()
	canceled := t.cancelLocked()
	l.mu.Unlock()
	if canceled {
		l.notify()
	}
}

// LOCKS_REQUIRED(t.loop.mu)
func (t *timer) cancelLocked() bool {
	if t.entry == nil {
		return false
	}
	e := t.entry
	t.entry = nil
	heap.Remove(&t.loop.timers, e.index)
	t.loop.queue.Push(work{task: e.task, status: api.ErrCallbackCanceled})
	return true
}
