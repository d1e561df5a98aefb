//go:build windows

// File: internal/concurrency/threadid_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "golang.org/x/sys/windows"

// ThreadIDSupported reports whether ThreadID returns real OS thread ids.
const ThreadIDSupported = true

// ThreadID returns the id of the calling OS thread. It is only stable for
// goroutines locked to their thread.
func ThreadID() uint64 {
	return uint64(windows.GetCurrentThreadId())
}
