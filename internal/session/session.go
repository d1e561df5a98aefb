// File: internal/session/session.go
// Package session
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Session with one-shot readiness callbacks and cancellation.

package session

import (
	"sync"

	"github.com/momentics/hioload-exec/api"
)

// Session is a client connection as owned by the transport layer.
type Session struct {
	id    string
	attrs *Attributes
	done  chan struct{}

	mu sync.Mutex
	// GUARDED_BY(mu)
	waiters []func(status error)
	// A signal delivered while nobody was waiting.
	//
	// GUARDED_BY(mu)
	latched bool
	// GUARDED_BY(mu)
	closed bool
}

var _ api.Session = (*Session)(nil)

// New creates an open session with the given identifier.
func New(id string, attrs *Attributes) *Session {
	if attrs == nil {
		attrs = NewAttributes(nil)
	}
	return &Session{
		id:    id,
		attrs: attrs,
		done:  make(chan struct{}),
	}
}

// ID returns the unique session identifier.
func (s *Session) ID() string {
	return s.id
}

// Attributes exposes the session-scoped key/value store.
func (s *Session) Attributes() *Attributes {
	return s.attrs
}

// OnDataAvailable registers cb to run once when data is available. A
// signal that arrived before registration is consumed immediately, on the
// caller. On a closed session cb receives ErrSessionClosed.
func (s *Session) OnDataAvailable(cb func(status error)) {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		cb(api.ErrSessionClosed.WithContext("session", s.id))
	case s.latched:
		s.latched = false
		s.mu.Unlock()
		cb(nil)
	default:
		s.waiters = append(s.waiters, cb)
		s.mu.Unlock()
	}
}

// SignalAvailableData wakes every registered callback on the calling
// goroutine. With no callback registered the signal is latched for the
// next registration.
func (s *Session) SignalAvailableData() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	waiters := s.waiters
	s.waiters = nil
	if len(waiters) == 0 {
		s.latched = true
	}
	s.mu.Unlock()

	for _, cb := range waiters {
		cb(nil)
	}
}

// Waiting returns the number of registered callbacks.
func (s *Session) Waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters)
}

// Cancel tears the session down; idempotent. Pending callbacks receive
// ErrSessionClosed.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.latched = false
	waiters := s.waiters
	s.waiters = nil
	close(s.done)
	s.mu.Unlock()

	status := api.ErrSessionClosed.WithContext("session", s.id)
	for _, cb := range waiters {
		cb(status)
	}
}

// Done returns a channel closed upon cancellation.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
