// File: internal/concurrency/taskqueue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// FIFO queue over a growable ring buffer. Not safe for concurrent use:
// owners guard it with their own lock, which is also the lock their
// condition variables wait on.

package concurrency

import "github.com/eapache/queue"

// TaskQueue is a typed FIFO queue preserving acceptance order.
type TaskQueue[T any] struct {
	q *queue.Queue
}

// NewTaskQueue creates an empty queue.
func NewTaskQueue[T any]() *TaskQueue[T] {
	return &TaskQueue[T]{q: queue.New()}
}

// Push appends v at the tail.
func (tq *TaskQueue[T]) Push(v T) {
	tq.q.Add(v)
}

// Pop removes the head; ok is false when the queue is empty.
func (tq *TaskQueue[T]) Pop() (v T, ok bool) {
	if tq.q.Length() == 0 {
		return v, false
	}
	return tq.q.Remove().(T), true
}

// Len returns the number of queued items.
func (tq *TaskQueue[T]) Len() int {
	return tq.q.Length()
}

// Drain removes and returns every queued item in FIFO order.
func (tq *TaskQueue[T]) Drain() []T {
	out := make([]T, 0, tq.q.Length())
	for tq.q.Length() > 0 {
		out = append(out, tq.q.Remove().(T))
	}
	return out
}
