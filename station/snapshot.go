package station

import "sync"

// Snapshot is the single most-recent Reading, shared between the reader loop
// (sole writer) and any number of concurrent HTTP handlers (readers).
//
// Readings are replaced as a whole under the lock, so a reader always sees a
// fully-old or fully-new sample, never a mix. Before the first publish,
// Latest returns the zero Reading.
type Snapshot struct {
	mu     sync.RWMutex
	latest Reading
}

func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Latest returns the most recently published Reading. It never fails and
// never blocks beyond the read lock.
func (s *Snapshot) Latest() Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Publish replaces the snapshot with r.
func (s *Snapshot) Publish(r Reading) {
	s.mu.Lock()
	s.latest = r
	s.mu.Unlock()
}
