package station

import (
	"sync"
	"time"
)

// Stats counts what the reader loop has seen since startup. Malformed lines
// are dropped without touching the snapshot, so the counters are the only
// place that noise shows up.
type Stats struct {
	mu        sync.Mutex
	startedAt time.Time

	linesTotal        uint64
	readingsPublished uint64
	malformedLines    uint64
	deviceErrors      uint64
}

// StatsSnapshot is the JSON shape served by the stats endpoint.
type StatsSnapshot struct {
	LinesTotal        uint64  `json:"lines_total"`
	ReadingsPublished uint64  `json:"readings_published"`
	MalformedLines    uint64  `json:"malformed_lines"`
	DeviceErrors      uint64  `json:"device_errors"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

func NewStats(startedAt time.Time) *Stats {
	return &Stats{startedAt: startedAt}
}

func (s *Stats) LineReceived() {
	s.mu.Lock()
	s.linesTotal++
	s.mu.Unlock()
}

func (s *Stats) ReadingPublished() {
	s.mu.Lock()
	s.readingsPublished++
	s.mu.Unlock()
}

func (s *Stats) MalformedLine() {
	s.mu.Lock()
	s.malformedLines++
	s.mu.Unlock()
}

func (s *Stats) DeviceError() {
	s.mu.Lock()
	s.deviceErrors++
	s.mu.Unlock()
}

// Snapshot returns a consistent copy of the counters as of now.
func (s *Stats) Snapshot(now time.Time) StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		LinesTotal:        s.linesTotal,
		ReadingsPublished: s.readingsPublished,
		MalformedLines:    s.malformedLines,
		DeviceErrors:      s.deviceErrors,
		UptimeSeconds:     now.Sub(s.startedAt).Seconds(),
	}
}
