//go:build linux

// hioload-exec/internal/concurrency/pin_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux CPU pinning through sched_setaffinity(2), without cgo.

package concurrency

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// PinCurrentThread binds the calling OS thread to cpuID modulo the number of
// CPUs. The caller must have locked its goroutine to the thread.
func PinCurrentThread(cpuID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID % runtime.NumCPU())
	return unix.SchedSetaffinity(0, &set)
}
