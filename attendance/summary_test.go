package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func entryAt(action Action, seq int, hour, minute int) LedgerEntry {
	return LedgerEntry{
		EntryType: action,
		Sequence:  seq,
		Timestamp: time.Date(2024, 3, 1, hour, minute, 0, 0, time.UTC),
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, StatusNoEntries, s.Status)
	assert.Equal(t, 0.0, s.TotalHours)
	assert.Empty(t, s.Sessions)
}

func TestSummarizeTwoClosedSessions(t *testing.T) {
	// 09:00-12:00 and 13:00-17:00 -> 7 hours across two sessions
	entries := []LedgerEntry{
		entryAt(ActionCheckIn, 1, 9, 0),
		entryAt(ActionCheckOut, 1, 12, 0),
		entryAt(ActionCheckIn, 2, 13, 0),
		entryAt(ActionCheckOut, 2, 17, 0),
	}

	s := Summarize(entries)
	assert.Equal(t, 7.0, s.TotalHours)
	assert.Equal(t, StatusCheckedOut, s.Status)
	assert.Len(t, s.Sessions, 2)
	assert.Equal(t, 180, s.Sessions[0].DurationMinutes)
	assert.Equal(t, 240, s.Sessions[1].DurationMinutes)
	assert.NotNil(t, s.Sessions[0].CheckOut)
	assert.NotNil(t, s.Sessions[1].CheckOut)
}

func TestSummarizeOpenSession(t *testing.T) {
	entries := []LedgerEntry{
		entryAt(ActionCheckIn, 1, 9, 0),
		entryAt(ActionCheckOut, 1, 12, 0),
		entryAt(ActionCheckIn, 2, 13, 0),
	}

	s := Summarize(entries)
	// the open session contributes nothing until it closes
	assert.Equal(t, 3.0, s.TotalHours)
	assert.Equal(t, StatusCheckedIn, s.Status)
	assert.Len(t, s.Sessions, 2)
	assert.Nil(t, s.Sessions[1].CheckOut)
	assert.Equal(t, 0, s.Sessions[1].DurationMinutes)
}

func TestSummarizeRoundsToTwoDecimals(t *testing.T) {
	// 09:00 to 09:50 -> 50 minutes -> 0.83h after rounding
	entries := []LedgerEntry{
		entryAt(ActionCheckIn, 1, 9, 0),
		entryAt(ActionCheckOut, 1, 9, 50),
	}

	s := Summarize(entries)
	assert.Equal(t, 0.83, s.TotalHours)
}

func TestFirstCheckInLastCheckOut(t *testing.T) {
	entries := []LedgerEntry{
		entryAt(ActionCheckIn, 1, 9, 0),
		entryAt(ActionCheckOut, 1, 12, 0),
		entryAt(ActionCheckIn, 2, 13, 0),
		entryAt(ActionCheckOut, 2, 17, 0),
	}

	first := FirstCheckIn(entries)
	if assert.NotNil(t, first) {
		assert.Equal(t, 9, first.Hour())
	}
	last := LastCheckOut(entries)
	if assert.NotNil(t, last) {
		assert.Equal(t, 17, last.Hour())
	}

	assert.Nil(t, FirstCheckIn(nil))
	assert.Nil(t, LastCheckOut([]LedgerEntry{entryAt(ActionCheckIn, 1, 9, 0)}))
}
