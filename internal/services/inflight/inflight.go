// Package inflight tracks entities with an action currently dispatched,
// so overlapping monitor ticks never double-act on the same one.
package inflight

import "sync"

// Set is a mutex-guarded set of entity ids.
type Set struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewSet creates an empty guard set.
func NewSet() *Set {
	return &Set{ids: make(map[string]struct{})}
}

// TryAcquire marks the id in-flight. Returns false if it already is.
func (s *Set) TryAcquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Release clears the id. Releasing an unknown id is a no-op.
func (s *Set) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, id)
}

// Has reports whether the id is currently in-flight.
func (s *Set) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.ids[id]
	return ok
}
