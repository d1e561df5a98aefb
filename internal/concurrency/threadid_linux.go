//go:build linux

// File: internal/concurrency/threadid_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "golang.org/x/sys/unix"

// ThreadIDSupported reports whether ThreadID returns real OS thread ids.
const ThreadIDSupported = true

// ThreadID returns the kernel id of the calling OS thread. It is only stable
// for goroutines locked to their thread.
func ThreadID() uint64 {
	return uint64(unix.Gettid())
}
