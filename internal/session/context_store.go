// Package session
// Author: momentics <momentics@gmail.com>
//
// Per-session attribute store with optional expiry.

package session

import (
	"sort"
	"sync"
	"time"

	"github.com/jacobsa/timeutil"
)

type entry struct {
	val    any
	expiry time.Time
}

// Attributes is a thread-safe key/value store scoped to one session.
type Attributes struct {
	clock timeutil.Clock
	mu    sync.RWMutex
	store map[string]entry // GUARDED_BY(mu)
}

// NewAttributes creates an empty store whose expiry is judged by clock.
func NewAttributes(clock timeutil.Clock) *Attributes {
	if clock == nil {
		clock = timeutil.RealClock()
	}
	return &Attributes{
		clock: clock,
		store: make(map[string]entry),
	}
}

// Set stores a value without expiry.
func (a *Attributes) Set(key string, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store[key] = entry{val: value}
}

// Get retrieves a live value.
func (a *Attributes) Get(key string) (any, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, ok := a.store[key]
	if !ok || a.expired(e) {
		return nil, false
	}
	return e.val, true
}

// Delete removes a key.
func (a *Attributes) Delete(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.store, key)
}

// Expire makes an existing key disappear ttl from now.
func (a *Attributes) Expire(key string, ttl time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if e, ok := a.store[key]; ok {
		e.expiry = a.clock.Now().Add(ttl)
		a.store[key] = e
	}
}

// Keys returns the live keys, sorted.
func (a *Attributes) Keys() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	keys := make([]string, 0, len(a.store))
	for k, e := range a.store {
		if !a.expired(e) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (a *Attributes) expired(e entry) bool {
	return !e.expiry.IsZero() && !a.clock.Now().Before(e.expiry)
}
