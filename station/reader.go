package station

import (
	"errors"
	"log"
	"time"

	"github.com/luhtfiimanal/go-radar-station/serial"
)

// deviceErrorBackoff is how long the reader loop pauses after a device-level
// error before trying the port again. Malformed lines skip the pause.
const deviceErrorBackoff = time.Second

// LineSource is the transport the reader loop drains. *serial.Port satisfies
// it; tests substitute scripted sources.
type LineSource interface {
	ReadLine() (string, error)
}

// Notifier receives each Reading right after it is published.
type Notifier interface {
	Notify(Reading)
}

// Reader is the background loop that owns the serial connection, parses each
// line into a Reading, and publishes successes to the shared Snapshot. It is
// the sole writer of the Snapshot.
type Reader struct {
	source   LineSource
	snapshot *Snapshot
	stats    *Stats
	notifier Notifier // optional

	sleep func(time.Duration) // injected so tests do not wait out the backoff
}

// NewReader wires a reader loop. notifier may be nil.
func NewReader(source LineSource, snapshot *Snapshot, stats *Stats, notifier Notifier) *Reader {
	return &Reader{
		source:   source,
		snapshot: snapshot,
		stats:    stats,
		notifier: notifier,
		sleep:    time.Sleep,
	}
}

// Run drains the source until it is closed.
//
// Error policy: a silent port (serial.ErrNoData) is retried immediately; a
// device-level error is logged, counted, and backed off for one second; a
// malformed line is logged, counted, and skipped with no pause. The snapshot
// is only ever touched by a fully successful parse.
func (r *Reader) Run() {
	for {
		line, err := r.source.ReadLine()
		switch {
		case errors.Is(err, serial.ErrClosed):
			return
		case errors.Is(err, serial.ErrNoData):
			continue
		case err != nil:
			r.stats.DeviceError()
			log.Printf("serial read: %v", err)
			r.sleep(deviceErrorBackoff)
			continue
		}

		r.stats.LineReceived()
		reading, err := ParseReading(line)
		if err != nil {
			r.stats.MalformedLine()
			log.Printf("dropping line %q: %v", line, err)
			continue
		}

		r.snapshot.Publish(reading)
		r.stats.ReadingPublished()
		if r.notifier != nil {
			r.notifier.Notify(reading)
		}
	}
}
