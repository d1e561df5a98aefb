// File: api/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Telemetry contract for executors. Methods must be cheap and non-blocking.

package api

import "time"

// ExecutorMetrics receives executor telemetry.
type ExecutorMetrics interface {
	// TaskScheduled counts a task accepted by executor.
	TaskScheduled(executor string)

	// TaskRejected counts a task invoked with a rejection status.
	TaskRejected(executor string, code ErrorCode)

	// TaskCompleted records how long an accepted task ran.
	TaskCompleted(executor string, d time.Duration, panicked bool)

	// WorkerThreads records the number of live worker threads.
	WorkerThreads(executor string, n int)

	// QueueDepth records accepted tasks waiting for a worker.
	QueueDepth(executor string, n int)
}

// NopMetrics discards all telemetry.
type NopMetrics struct{}

func (NopMetrics) TaskScheduled(string)                      {}
func (NopMetrics) TaskRejected(string, ErrorCode)            {}
func (NopMetrics) TaskCompleted(string, time.Duration, bool) {}
func (NopMetrics) WorkerThreads(string, int)                 {}
func (NopMetrics) QueueDepth(string, int)                    {}
