// File: internal/session/store.go
// Package session
// Author: momentics <momentics@gmail.com>
//
// Sharded, thread-safe session Manager.

package session

import (
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
	"github.com/jacobsa/timeutil"
)

const defaultShards = 16

// Manager owns the sessions of one transport layer.
type Manager struct {
	clock  timeutil.Clock
	shards []*shard
	mask   uint32
}

type shard struct {
	mu       sync.RWMutex
	sessions map[string]*Session // GUARDED_BY(mu)
}

// NewManager constructs a manager with shardCount shards, rounded up to a
// power of two. Attribute expiry uses clock; nil means the real clock.
func NewManager(shardCount int, clock timeutil.Clock) *Manager {
	if shardCount <= 0 {
		shardCount = defaultShards
	}
	if clock == nil {
		clock = timeutil.RealClock()
	}
	// power-of-two shards for bitmasking
	m := nextPowerOfTwo(uint32(shardCount))
	shards := make([]*shard, m)
	for i := range shards {
		shards[i] = &shard{sessions: make(map[string]*Session)}
	}
	return &Manager{clock: clock, shards: shards, mask: m - 1}
}

func (m *Manager) shard(id string) *shard {
	return m.shards[fnv32(id)&m.mask]
}

// Open creates a session with a fresh random identifier.
func (m *Manager) Open() *Session {
	s, _ := m.Create(uuid.NewString())
	return s
}

// Create returns the session for id, creating it when absent. created
// reports whether a new session was made.
func (m *Manager) Create(id string) (s *Session, created bool) {
	sh := m.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if s, ok := sh.sessions[id]; ok {
		return s, false
	}
	s = New(id, NewAttributes(m.clock))
	sh.sessions[id] = s
	return s, true
}

// Get fetches a session if present.
func (m *Manager) Get(id string) (*Session, bool) {
	sh := m.shard(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	s, ok := sh.sessions[id]
	return s, ok
}

// Delete removes and cancels the session.
func (m *Manager) Delete(id string) {
	sh := m.shard(id)
	sh.mu.Lock()
	s, ok := sh.sessions[id]
	delete(sh.sessions, id)
	sh.mu.Unlock()
	// Cancel outside the shard lock: it runs callbacks.
	if ok {
		s.Cancel()
	}
}

// Len returns the number of sessions.
func (m *Manager) Len() int {
	n := 0
	for _, sh := range m.shards {
		sh.mu.RLock()
		n += len(sh.sessions)
		sh.mu.RUnlock()
	}
	return n
}

// Range applies fn to every session. fn must not call back into m.
func (m *Manager) Range(fn func(*Session)) {
	for _, sh := range m.shards {
		sh.mu.RLock()
		for _, s := range sh.sessions {
			fn(s)
		}
		sh.mu.RUnlock()
	}
}

// CloseAll cancels and removes every session.
func (m *Manager) CloseAll() {
	var all []*Session
	for _, sh := range m.shards {
		sh.mu.Lock()
		for id, s := range sh.sessions {
			all = append(all, s)
			delete(sh.sessions, id)
		}
		sh.mu.Unlock()
	}
	for _, s := range all {
		s.Cancel()
	}
}

func fnv32(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32()
}

// nextPowerOfTwo returns the next power-of-two >= v.
func nextPowerOfTwo(v uint32) uint32 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}
