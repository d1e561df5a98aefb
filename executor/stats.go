// File: executor/stats.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package executor

// Stats is a point-in-time snapshot of an executor.
type Stats struct {
	Name        string   `yaml:"name"`
	State       string   `yaml:"state"`
	Threads     int      `yaml:"threads"`
	LiveWorkers int      `yaml:"liveWorkers"`
	Queued      int      `yaml:"queued"`
	Running     int      `yaml:"running"`
	Accepted    int64    `yaml:"accepted"`
	Completed   int64    `yaml:"completed"`
	Rejected    int64    `yaml:"rejected"`
	Panics      int64    `yaml:"panics"`
	WorkerTIDs  []uint64 `yaml:"workerThreadIds,omitempty"`
}
