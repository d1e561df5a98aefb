//go:build !linux && !windows

// File: internal/concurrency/threadid_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

// ThreadIDSupported reports whether ThreadID returns real OS thread ids.
const ThreadIDSupported = false

// ThreadID returns 0 on platforms without a thread id syscall.
func ThreadID() uint64 {
	return 0
}
