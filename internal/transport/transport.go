// Package transport
// Author: momentics <momentics@gmail.com>
//
// Layer creates sessions and delivers "data available" signals to them on
// the reactor, never on the goroutine that requested the delivery.

package transport

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/internal/session"
)

// Layer is a mock transport: sessions plus reactor-driven data arrival.
type Layer struct {
	reactor  api.Reactor
	sessions *session.Manager
	logger   *zap.Logger

	mu      sync.Mutex
	timers  map[string]api.ReactorTimer // GUARDED_BY(mu)
	closed  bool                        // GUARDED_BY(mu)
	signals int64                       // GUARDED_BY(mu)
}

// NewLayer creates a layer signaling through reactor.
func NewLayer(reactor api.Reactor, sessions *session.Manager, logger *zap.Logger) *Layer {
	if sessions == nil {
		sessions = session.NewManager(0, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Layer{
		reactor:  reactor,
		sessions: sessions,
		logger:   logger,
		timers:   make(map[string]api.ReactorTimer),
	}
}

// Sessions exposes the session registry.
func (l *Layer) Sessions() *session.Manager {
	return l.sessions
}

// Open creates a new session.
func (l *Layer) Open() (*session.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, api.ErrInShutdown.WithContext("component", "transport")
	}
	s := l.sessions.Open()
	l.logger.Debug("session opened", zap.String("session", s.ID()))
	return s, nil
}

// Close cancels a session and any delivery pending for it.
func (l *Layer) Close(id string) {
	l.mu.Lock()
	t := l.timers[id]
	delete(l.timers, id)
	l.mu.Unlock()
	if t != nil {
		t.Cancel()
	}
	l.sessions.Delete(id)
	l.logger.Debug("session closed", zap.String("session", id))
}

// Deliver posts a readiness signal for s to the reactor.
func (l *Layer) Deliver(s *session.Session) {
	l.reactor.Schedule(func(status error) {
		if status != nil {
			return
		}
		l.signal(s)
	})
}

// DeliverAfter signals s on the reactor once d has elapsed on the reactor's
// clock. A later call for the same session replaces the pending delivery.
func (l *Layer) DeliverAfter(s *session.Session, d time.Duration) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return api.ErrInShutdown.WithContext("component", "transport")
	}
	t, ok := l.timers[s.ID()]
	if !ok {
		var err error
		if t, err = l.reactor.MakeTimer(); err != nil {
			l.mu.Unlock()
			return err
		}
		l.timers[s.ID()] = t
	}
	l.mu.Unlock()

	t.WaitUntil(l.reactor.Now().Add(d), func(status error) {
		if status != nil {
			return
		}
		l.signal(s)
	})
	return nil
}

// Signals returns the number of readiness signals delivered.
func (l *Layer) Signals() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.signals
}

// Shutdown stops accepting sessions, cancels pending deliveries and tears
// down every session. Callbacks still registered receive ErrSessionClosed.
func (l *Layer) Shutdown() {
	l.mu.Lock()
	l.closed = true
	timers := l.timers
	l.timers = make(map[string]api.ReactorTimer)
	l.mu.Unlock()

	for _, t := range timers {
		t.Cancel()
	}
	l.sessions.CloseAll()
	l.logger.Info("transport shut down", zap.Int("canceledDeliveries", len(timers)))
}

func (l *Layer) signal(s *session.Session) {
	l.mu.Lock()
	l.signals++
	l.mu.Unlock()
	s.SignalAvailableData()
}
