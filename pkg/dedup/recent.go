// Package dedup holds a small in-memory set of recently seen identifiers.
// It is process-local and non-persistent: two processes sharing an upstream
// feed can still publish the same listing twice. That limitation is
// accepted for a single-instance deployment.
package dedup

import "sync"

const (
	defaultSoftCap  = 50
	defaultTrimSize = 30
)

// RecentSet remembers the most recently added identifiers. When the set
// grows past its soft cap it is trimmed down to the newest trimSize
// entries, oldest first.
type RecentSet struct {
	mu       sync.Mutex
	ids      []string
	index    map[string]struct{}
	softCap  int
	trimSize int
}

func NewRecentSet() *RecentSet {
	return NewRecentSetWithLimits(defaultSoftCap, defaultTrimSize)
}

func NewRecentSetWithLimits(softCap, trimSize int) *RecentSet {
	if trimSize > softCap {
		trimSize = softCap
	}
	return &RecentSet{
		index:    make(map[string]struct{}),
		softCap:  softCap,
		trimSize: trimSize,
	}
}

func (s *RecentSet) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[id]
	return ok
}

// Add records id as recently seen. Re-adding an existing id is a no-op and
// does not refresh its position.
func (s *RecentSet) Add(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; ok {
		return
	}

	s.ids = append(s.ids, id)
	s.index[id] = struct{}{}

	if len(s.ids) > s.softCap {
		evicted := s.ids[:len(s.ids)-s.trimSize]
		for _, old := range evicted {
			delete(s.index, old)
		}
		kept := make([]string, s.trimSize)
		copy(kept, s.ids[len(s.ids)-s.trimSize:])
		s.ids = kept
	}
}

func (s *RecentSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
