// File: api/session.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Consumer side of a transport session, as seen by executors.

package api

// Session is a client connection owned by the transport layer. Executors
// hold it by reference only and never mutate it.
type Session interface {
	// ID returns the unique session identifier.
	ID() string

	// OnDataAvailable registers a one-shot readiness callback. It is
	// invoked with nil once data is available, or with ErrSessionClosed
	// if the session is torn down first. The callback may run on the
	// goroutine that signals readiness, so it must not block.
	OnDataAvailable(cb func(status error))

	// Done returns a channel closed when the session is torn down.
	Done() <-chan struct{}
}
