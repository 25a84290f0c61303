package aggregator

import (
	"sync"
	"time"

	"github.com/sakhareritesh/dashboard/pkg/source"
)

// Snapshot caches one trending result. The refresher warms it on an
// interval so the trending endpoint can answer without fanning out on
// every request; an expired snapshot is simply ignored.
type Snapshot struct {
	ttl time.Duration

	mu        sync.Mutex
	items     []source.Item
	fetchedAt time.Time
}

// NewSnapshot creates an empty snapshot with the given TTL.
func NewSnapshot(ttl time.Duration) *Snapshot {
	return &Snapshot{ttl: ttl}
}

// Get returns the cached items and whether they are still fresh.
func (s *Snapshot) Get() ([]source.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fetchedAt.IsZero() || time.Since(s.fetchedAt) > s.ttl {
		return nil, false
	}
	items := make([]source.Item, len(s.items))
	copy(items, s.items)
	return items, true
}

// Set stores a fresh result.
func (s *Snapshot) Set(items []source.Item) {
	s.mu.Lock()
	s.items = items
	s.fetchedAt = time.Now()
	s.mu.Unlock()
}
