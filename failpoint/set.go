// File: failpoint/set.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Set is an instance-scoped collection of named fail points, handed to
// components that look their hooks up by name.

package failpoint

import (
	"sort"
	"sync"
)

// Set holds named fail points, created on first lookup.
type Set struct {
	mu     sync.Mutex
	points map[string]*FailPoint
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{points: make(map[string]*FailPoint)}
}

// Get returns the fail point called name, creating it disabled if needed.
func (s *Set) Get(name string) *FailPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	fp, ok := s.points[name]
	if !ok {
		fp = New(name)
		s.points[name] = fp
	}
	return fp
}

// Names returns the registered names in sorted order.
func (s *Set) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.points))
	for name := range s.points {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DisableAll disables every fail point in the set.
func (s *Set) DisableAll() {
	s.mu.Lock()
	points := make([]*FailPoint, 0, len(s.points))
	for _, fp := range s.points {
		points = append(points, fp)
	}
	s.mu.Unlock()
	for _, fp := range points {
		fp.Disable()
	}
}

// Snapshot reports enablement and entry counts, keyed by name.
func (s *Set) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.points))
	for name, fp := range s.points {
		out[name] = map[string]any{
			"enabled":      fp.Enabled(),
			"timesEntered": fp.TimesEntered(),
		}
	}
	return out
}
