package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDay(t *testing.T, ledger *memLedger, legacy *memLegacy, key Key, hours [][2]int) {
	t.Helper()
	for i, h := range hours {
		in := time.Date(2024, 3, 1, h[0], 0, 0, 0, time.UTC)
		out := time.Date(2024, 3, 1, h[1], 0, 0, 0, time.UTC)
		require.NoError(t, ledger.Append(key, ActionCheckIn, i+1, in, PersonSnapshot{}))
		require.NoError(t, ledger.Append(key, ActionCheckOut, i+1, out, PersonSnapshot{}))
		require.NoError(t, legacy.RecordSighting(key, in, PersonSnapshot{}))
		require.NoError(t, legacy.RecordSighting(key, out, PersonSnapshot{}))
	}
}

func TestCompareAgreementWithinTolerance(t *testing.T) {
	ledger := newMemLedger()
	legacy := newMemLegacy()
	rc := NewReconciler(ledger, legacy)
	key := Key{TenantID: 1, RegID: "EMP001", Date: "2024-03-01"}

	// a single 9-17 session: ledger total and legacy span are identical
	seedDay(t, ledger, legacy, key, [][2]int{{9, 17}})

	report, err := rc.Compare(key)
	require.NoError(t, err)
	assert.Empty(t, report.Discrepancies)
	assert.Equal(t, 8.0, report.LedgerSummary.TotalHours)
	assert.Equal(t, 8.0, report.LegacyTotalHours)
}

func TestCompareFlagsLunchBreakDrift(t *testing.T) {
	ledger := newMemLedger()
	legacy := newMemLegacy()
	rc := NewReconciler(ledger, legacy)
	key := Key{TenantID: 1, RegID: "EMP001", Date: "2024-03-01"}

	// two sessions with a one-hour gap: ledger says 7h worked, the
	// legacy span says 8h, well past the 6-minute tolerance
	seedDay(t, ledger, legacy, key, [][2]int{{9, 12}, {13, 17}})

	report, err := rc.Compare(key)
	require.NoError(t, err)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, DiscrepancyTotalHours, report.Discrepancies[0].Type)
}

func TestCompareBoundaryMismatch(t *testing.T) {
	ledger := newMemLedger()
	legacy := newMemLegacy()
	rc := NewReconciler(ledger, legacy)
	key := Key{TenantID: 1, RegID: "EMP001", Date: "2024-03-01"}

	in := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	out := time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.Append(key, ActionCheckIn, 1, in, PersonSnapshot{}))
	require.NoError(t, ledger.Append(key, ActionCheckOut, 1, out, PersonSnapshot{}))
	// the legacy row was edited by hand: same span length, shifted start
	legacy.bounds[key] = DayBounds{Start: in.Add(2 * time.Minute), End: out.Add(2 * time.Minute)}

	report, err := rc.Compare(key)
	require.NoError(t, err)
	require.Len(t, report.Discrepancies, 2)
	assert.Equal(t, DiscrepancyBoundaries, report.Discrepancies[0].Type)
	assert.Equal(t, DiscrepancyBoundaries, report.Discrepancies[1].Type)
}

func TestCompareLedgerOnly(t *testing.T) {
	ledger := newMemLedger()
	legacy := newMemLegacy()
	rc := NewReconciler(ledger, legacy)
	key := Key{TenantID: 1, RegID: "EMP001", Date: "2024-03-01"}

	in := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.Append(key, ActionCheckIn, 1, in, PersonSnapshot{}))

	report, err := rc.Compare(key)
	require.NoError(t, err)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, DiscrepancyLedgerOnly, report.Discrepancies[0].Type)
}

func TestCompareLegacyOnly(t *testing.T) {
	ledger := newMemLedger()
	legacy := newMemLegacy()
	rc := NewReconciler(ledger, legacy)
	key := Key{TenantID: 1, RegID: "EMP001", Date: "2024-03-01"}

	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, legacy.RecordSighting(key, at, PersonSnapshot{}))

	report, err := rc.Compare(key)
	require.NoError(t, err)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, DiscrepancyLegacyOnly, report.Discrepancies[0].Type)
}

func TestCompareBothEmpty(t *testing.T) {
	rc := NewReconciler(newMemLedger(), newMemLegacy())
	report, err := rc.Compare(Key{TenantID: 1, RegID: "EMP001", Date: "2024-03-01"})
	require.NoError(t, err)
	assert.Empty(t, report.Discrepancies)
	assert.Nil(t, report.LegacyBounds)
}

func TestVerifyAlternationCleanDay(t *testing.T) {
	entries := []LedgerEntry{
		entryAt(ActionCheckIn, 1, 9, 0),
		entryAt(ActionCheckOut, 1, 12, 0),
		entryAt(ActionCheckIn, 2, 13, 0),
		entryAt(ActionCheckOut, 2, 17, 0),
	}
	assert.Empty(t, VerifyAlternation(entries))
}

func TestVerifyAlternationDetectsBreakAndResyncs(t *testing.T) {
	// check_out(1) is missing; the verifier must flag check_in(2) once
	// and then accept the rest of the day from there
	entries := []LedgerEntry{
		entryAt(ActionCheckIn, 1, 9, 0),
		entryAt(ActionCheckIn, 2, 13, 0),
		entryAt(ActionCheckOut, 2, 17, 0),
	}

	discrepancies := VerifyAlternation(entries)
	require.Len(t, discrepancies, 1)
	assert.Equal(t, DiscrepancyAlternation, discrepancies[0].Type)
}

func TestVerifyAlternationDayStartingWithCheckOut(t *testing.T) {
	entries := []LedgerEntry{
		entryAt(ActionCheckOut, 1, 9, 0),
	}
	discrepancies := VerifyAlternation(entries)
	require.Len(t, discrepancies, 1)
	assert.Equal(t, DiscrepancyAlternation, discrepancies[0].Type)
}

func TestDailyReportCounters(t *testing.T) {
	ledger := newMemLedger()
	legacy := newMemLegacy()
	rc := NewReconciler(ledger, legacy)
	date := "2024-03-01"

	// EMP001: both systems agree
	seedDay(t, ledger, legacy, Key{TenantID: 1, RegID: "EMP001", Date: date}, [][2]int{{9, 17}})
	// EMP002: ledger rows only
	in := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.Append(Key{TenantID: 1, RegID: "EMP002", Date: date}, ActionCheckIn, 1, in, PersonSnapshot{}))
	// EMP003: legacy row only
	require.NoError(t, legacy.RecordSighting(Key{TenantID: 1, RegID: "EMP003", Date: date}, in, PersonSnapshot{}))
	// EMP004: drift past tolerance
	seedDay(t, ledger, legacy, Key{TenantID: 1, RegID: "EMP004", Date: date}, [][2]int{{9, 12}, {13, 17}})
	// another tenant's activity must not leak into this report
	seedDay(t, ledger, legacy, Key{TenantID: 2, RegID: "EMP001", Date: date}, [][2]int{{9, 17}})

	report, err := rc.DailyReport(1, date)
	require.NoError(t, err)
	require.Len(t, report.Comparisons, 4)
	assert.Equal(t, 1, report.BothSystemsAgree)
	assert.Equal(t, 3, report.DiscrepanciesFound)
	assert.Equal(t, 1, report.LedgerOnly)
	assert.Equal(t, 1, report.LegacyOnly)

	// reg IDs come back sorted for a stable report
	assert.Equal(t, "EMP001", report.Comparisons[0].RegID)
	assert.Equal(t, "EMP004", report.Comparisons[3].RegID)
}
