// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Low-level concurrency primitives for the executors: a worker group that
// owns dedicated OS threads and always joins them, a FIFO task queue, OS
// thread identity, and CPU pinning of the calling thread.
//
// Thread identity and pinning are implemented per platform (Linux/Windows)
// through golang.org/x/sys; other platforms report them as unsupported.
package concurrency
