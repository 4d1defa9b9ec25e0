package attendance

import (
	"log"
	"sync/atomic"
	"time"
)

// Recorder orchestrates the full write path for one recognition event:
// deduplication, state-machine decision, defensive exact-duplicate
// check, ledger append and legacy sync, all inside a single critical
// section keyed by (tenant, reg_id, date).
type Recorder struct {
	ledger LedgerSink
	legacy LegacySink
	dedup  *Deduplicator
	locks  *KeyLocks

	// Now is the clock used for entry timestamps; overridable in tests
	Now func() time.Time

	legacySyncFailures atomic.Int64
}

// NewRecorder wires a recorder over the two sinks with the given
// deduplication window.
func NewRecorder(ledger LedgerSink, legacy LegacySink, dedupWindow time.Duration) *Recorder {
	return &Recorder{
		ledger: ledger,
		legacy: legacy,
		dedup:  NewDeduplicator(dedupWindow),
		locks:  NewKeyLocks(),
		Now:    time.Now,
	}
}

// RecordEvent processes one recognized-identity event. A persistence
// failure drops the event without retry; the camera re-detecting the
// person is the de facto retry mechanism. A legacy-sync failure never
// affects the result: the ledger is authoritative.
func (r *Recorder) RecordEvent(key Key, snapshot PersonSnapshot) EntryResult {
	release := r.locks.Lock(key)
	defer release()

	now := r.Now()

	if !r.dedup.Accept(key, now) {
		return EntryResult{Outcome: OutcomeDuplicateSuppressed}
	}

	latest, err := r.ledger.LatestEntry(key)
	if err != nil {
		log.Printf("recorder: ERROR reading latest entry for %s on %s: %v",
			key.RegID, key.Date, err)
		r.dedup.Forget(key)
		return EntryResult{Outcome: OutcomeError, Err: err}
	}

	action, sequence := NextAction(latest)

	exists, err := r.ledger.HasEntry(key, sequence, action)
	if err != nil {
		log.Printf("recorder: ERROR checking slot %s(%d) for %s on %s: %v",
			action, sequence, key.RegID, key.Date, err)
		r.dedup.Forget(key)
		return EntryResult{Outcome: OutcomeError, Err: err}
	}
	if exists {
		// a race slipped past the suppression window (clock skew or a
		// retry); the row is already there, so drop this event quietly
		log.Printf("recorder: exact duplicate %s(%d) for %s on %s, dropping",
			action, sequence, key.RegID, key.Date)
		return EntryResult{Outcome: OutcomeDuplicateExact, Action: action, Sequence: sequence}
	}

	if err := r.ledger.Append(key, action, sequence, now, snapshot); err != nil {
		log.Printf("recorder: ERROR writing %s(%d) for %s on %s: %v",
			action, sequence, key.RegID, key.Date, err)
		r.dedup.Forget(key)
		return EntryResult{Outcome: OutcomeError, Err: err}
	}

	// dual write: keep the legacy first-seen/last-seen projection in
	// sync; failure here is logged and counted but the ledger write stands
	if err := r.legacy.RecordSighting(key, now, snapshot); err != nil {
		r.legacySyncFailures.Add(1)
		log.Printf("recorder: legacy sync failed for %s on %s (ledger write kept): %v",
			key.RegID, key.Date, err)
	}

	return EntryResult{Outcome: OutcomeWritten, Action: action, Sequence: sequence}
}

// LegacySyncFailures reports how many legacy writes have failed since
// startup; surfaced on the comparison report for the migration period.
func (r *Recorder) LegacySyncFailures() int64 {
	return r.legacySyncFailures.Load()
}

// PruneDedupBefore drops deduplication markers older than cutoff,
// typically called when a scan session ends.
func (r *Recorder) PruneDedupBefore(cutoff time.Time) {
	r.dedup.PruneBefore(cutoff)
}
