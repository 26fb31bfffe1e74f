package sensors

import (
	"fmt"
	"sync"
	"time"

	"github.com/servicecoinrwb/BAS-System/internal/control"
)

// LatestSource holds the most recent telemetry reading pushed from the
// broker. A reading older than the staleness window is refused rather than
// fed into a scan.
type LatestSource struct {
	mu     sync.Mutex
	snap   control.Snapshot
	at     time.Time
	maxAge time.Duration
}

// NewLatestSource creates a broker-fed source with the given staleness
// window.
func NewLatestSource(maxAge time.Duration) *LatestSource {
	return &LatestSource{maxAge: maxAge}
}

// Update stores a new reading. Called from the MQTT handler goroutine.
func (l *LatestSource) Update(snap control.Snapshot, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snap = snap
	l.at = at
}

// Snapshot returns the latest reading stamped with the scan time, or
// ErrNoReading when nothing fresh is available.
func (l *LatestSource) Snapshot(now time.Time) (control.Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.at.IsZero() {
		return control.Snapshot{}, ErrNoReading
	}
	if age := now.Sub(l.at); age > l.maxAge {
		return control.Snapshot{}, fmt.Errorf("%w: reading is %s old", ErrNoReading, age)
	}
	snap := l.snap
	snap.At = now
	return snap, nil
}
