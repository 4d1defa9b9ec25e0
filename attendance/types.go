// Package attendance implements the attendance state-reconciliation
// engine: deduplication of bursty recognition events, the
// check-in/check-out state machine, the append-only time-entry ledger
// write path, and the reconciler that keeps the legacy one-row-per-day
// attendance projection in sync and audits it against the ledger.
package attendance

import "time"

// DateLayout is the calendar-date format used for ledger keys.
const DateLayout = "2006-01-02"

// TimeOfDayLayout matches the HH:MM:SS strings of the legacy attendance table.
const TimeOfDayLayout = "15:04:05"

// Action is the type of a ledger entry.
type Action string

const (
	ActionCheckIn  Action = "check_in"
	ActionCheckOut Action = "check_out"
)

// Key identifies one person's ledger for one day within one tenant.
// All dedup, locking and ledger operations are scoped by it.
type Key struct {
	TenantID uint
	RegID    string
	Date     string // YYYY-MM-DD
}

// NewKey builds a Key for the calendar date of the given instant.
func NewKey(tenantID uint, regID string, at time.Time) Key {
	return Key{TenantID: tenantID, RegID: regID, Date: at.Format(DateLayout)}
}

// PersonSnapshot carries the employee attributes denormalized onto
// every ledger entry at write time.
type PersonSnapshot struct {
	FirstName   string
	LastName    string
	Occupation  string
	RegularWage float64
}

// LedgerEntry is the core's view of one ledger row.
type LedgerEntry struct {
	EntryType Action
	Sequence  int
	Timestamp time.Time
}

// DayBounds is the legacy projection's first-seen/last-seen pair for one day.
type DayBounds struct {
	Start time.Time
	End   time.Time
}

// LedgerSink is the port to the system of record. Implementations must
// enforce a storage-level uniqueness constraint on
// (tenant, reg_id, date, sequence, entry_type) as a second line of
// defense against races across processes.
type LedgerSink interface {
	// LatestEntry returns the entry with the greatest timestamp for the
	// key, or nil when the ledger is empty for that key
	LatestEntry(key Key) (*LedgerEntry, error)
	// HasEntry reports whether an entry with this exact slot already exists
	HasEntry(key Key, sequence int, action Action) (bool, error)
	// Append writes a new ledger row; it must never mutate existing rows
	Append(key Key, action Action, sequence int, at time.Time, snapshot PersonSnapshot) error
	// EntriesForDay returns all entries for the key ordered by timestamp
	EntriesForDay(key Key) ([]LedgerEntry, error)
	// RegIDsForDay returns the distinct reg IDs with ledger activity on a date
	RegIDsForDay(tenantID uint, date string) ([]string, error)
}

// LegacySink is the port to the legacy single-pair-per-day projection.
type LegacySink interface {
	// RecordSighting creates the day's row on first detection and
	// advances end_time on every later one
	RecordSighting(key Key, at time.Time, snapshot PersonSnapshot) error
	// DayBounds returns the start/end pair for the key, or nil when absent
	DayBounds(key Key) (*DayBounds, error)
	// RegIDsForDay returns the distinct reg IDs present on a date
	RegIDsForDay(tenantID uint, date string) ([]string, error)
}

// Outcome classifies the result of a RecordEvent call.
type Outcome string

const (
	OutcomeWritten             Outcome = "written"
	OutcomeDuplicateSuppressed Outcome = "duplicate_suppressed"
	OutcomeDuplicateExact      Outcome = "duplicate_exact"
	OutcomeError               Outcome = "error"
)

// EntryResult is the outcome of processing one recognition event.
// Action and Sequence are only meaningful when Outcome is OutcomeWritten.
type EntryResult struct {
	Outcome  Outcome
	Action   Action
	Sequence int
	Err      error
}
