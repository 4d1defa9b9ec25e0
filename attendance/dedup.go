package attendance

import (
	"sync"
	"time"
)

// pruneLimit is the map size above which Accept sweeps stale markers.
const pruneLimit = 4096

// pruneAge is how long an acceptance marker can outlive its usefulness;
// markers are only consulted within the suppression window, so anything
// a day old is dead weight from previous scan sessions.
const pruneAge = 24 * time.Hour

// Deduplicator suppresses repeated detections of the same person caused
// by consecutive video frames showing the same face. It tracks, per
// key, the timestamp of the most recently accepted event (not the most
// recent raw detection) and rejects anything inside the suppression
// window of it.
type Deduplicator struct {
	window time.Duration

	mu           sync.Mutex
	lastAccepted map[Key]time.Time
}

// NewDeduplicator creates a deduplicator with the given suppression window.
func NewDeduplicator(window time.Duration) *Deduplicator {
	return &Deduplicator{
		window:       window,
		lastAccepted: make(map[Key]time.Time),
	}
}

// Accept reports whether a detection at detectedAt should proceed to
// state-machine processing. The first detection of a day is always
// accepted. Accepting updates the last-accepted marker; rejected
// detections leave it untouched.
func (d *Deduplicator) Accept(key Key, detectedAt time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if last, ok := d.lastAccepted[key]; ok {
		if detectedAt.Sub(last) < d.window && last.Sub(detectedAt) < d.window {
			return false
		}
	}

	d.lastAccepted[key] = detectedAt
	if len(d.lastAccepted) > pruneLimit {
		d.pruneLocked(detectedAt.Add(-pruneAge))
	}
	return true
}

// Forget drops the marker for a key, re-opening the window. Used by the
// recorder when a write fails after acceptance so the next detection is
// not pointlessly suppressed.
func (d *Deduplicator) Forget(key Key) {
	d.mu.Lock()
	delete(d.lastAccepted, key)
	d.mu.Unlock()
}

// PruneBefore removes markers older than cutoff.
func (d *Deduplicator) PruneBefore(cutoff time.Time) {
	d.mu.Lock()
	d.pruneLocked(cutoff)
	d.mu.Unlock()
}

func (d *Deduplicator) pruneLocked(cutoff time.Time) {
	for k, t := range d.lastAccepted {
		if t.Before(cutoff) {
			delete(d.lastAccepted, k)
		}
	}
}
