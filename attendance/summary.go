package attendance

import (
	"math"
	"time"
)

// Summary status values.
const (
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
	StatusNoEntries  = "no_entries"
)

// SessionInterval is one paired check-in/check-out. CheckOut is nil for
// an open session still awaiting its check-out.
type SessionInterval struct {
	Sequence        int        `json:"sequence"`
	CheckIn         time.Time  `json:"check_in"`
	CheckOut        *time.Time `json:"check_out,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
}

// Summary is the daily roll-up computed from the ledger: total worked
// hours across closed sessions, the session list, and the person's
// current status.
type Summary struct {
	TotalHours float64           `json:"total_hours"`
	Sessions   []SessionInterval `json:"sessions"`
	Status     string            `json:"status"`
}

// Summarize walks the day's ledger entries (ordered by timestamp),
// pairing each check-in with the check-out of the same sequence number.
// An unmatched trailing check-in is an open session contributing zero
// duration until closed. Total hours are the closed-session minutes
// converted to hours, rounded to two decimals.
func Summarize(entries []LedgerEntry) Summary {
	if len(entries) == 0 {
		return Summary{Status: StatusNoEntries, Sessions: []SessionInterval{}}
	}

	sessions := []SessionInterval{}
	var open *SessionInterval
	var totalMinutes float64

	for _, e := range entries {
		switch e.EntryType {
		case ActionCheckIn:
			s := SessionInterval{Sequence: e.Sequence, CheckIn: e.Timestamp}
			sessions = append(sessions, s)
			open = &sessions[len(sessions)-1]
		case ActionCheckOut:
			if open != nil && open.Sequence == e.Sequence {
				out := e.Timestamp
				open.CheckOut = &out
				d := out.Sub(open.CheckIn)
				open.DurationMinutes = int(math.Round(d.Minutes()))
				totalMinutes += d.Minutes()
				open = nil
			}
		}
	}

	status := StatusCheckedOut
	if entries[len(entries)-1].EntryType == ActionCheckIn {
		status = StatusCheckedIn
	}

	return Summary{
		TotalHours: roundHours(totalMinutes / 60),
		Sessions:   sessions,
		Status:     status,
	}
}

// FirstCheckIn returns the timestamp of the day's first check-in, or nil.
func FirstCheckIn(entries []LedgerEntry) *time.Time {
	for _, e := range entries {
		if e.EntryType == ActionCheckIn {
			t := e.Timestamp
			return &t
		}
	}
	return nil
}

// LastCheckOut returns the timestamp of the day's last check-out, or nil.
func LastCheckOut(entries []LedgerEntry) *time.Time {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].EntryType == ActionCheckOut {
			t := entries[i].Timestamp
			return &t
		}
	}
	return nil
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
