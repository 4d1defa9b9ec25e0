package attendance

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"
)

// DefaultCompareTolerance is the allowed drift between the ledger's
// total worked duration and the legacy projection's end-start span.
const DefaultCompareTolerance = 6 * time.Minute

// DiscrepancyType classifies a divergence between the two systems.
type DiscrepancyType string

const (
	DiscrepancyTotalHours  DiscrepancyType = "total_hours_mismatch"
	DiscrepancyBoundaries  DiscrepancyType = "time_boundaries_mismatch"
	DiscrepancyLedgerOnly  DiscrepancyType = "missing_legacy_entry"
	DiscrepancyLegacyOnly  DiscrepancyType = "missing_ledger_entries"
	DiscrepancyAlternation DiscrepancyType = "alternation_break"
)

// Discrepancy is one flagged divergence with a human-readable detail.
type Discrepancy struct {
	Type   DiscrepancyType `json:"type"`
	Detail string          `json:"detail"`
}

// ComparisonReport is the read-only audit of one (tenant, reg_id, date)
// key across both systems.
type ComparisonReport struct {
	RegID            string        `json:"reg_id"`
	Date             string        `json:"date"`
	LedgerSummary    Summary       `json:"ledger_summary"`
	LegacyBounds     *DayBounds    `json:"legacy_bounds,omitempty"`
	LegacyTotalHours float64       `json:"legacy_total_hours"`
	Discrepancies    []Discrepancy `json:"discrepancies"`
}

// DailyComparisonReport aggregates per-employee comparisons for one
// tenant and date, for administrative review during the parallel run.
type DailyComparisonReport struct {
	TenantID           uint               `json:"tenant_id"`
	Date               string             `json:"date"`
	Comparisons        []ComparisonReport `json:"comparisons"`
	BothSystemsAgree   int                `json:"both_systems_agree"`
	DiscrepanciesFound int                `json:"discrepancies_found"`
	LegacyOnly         int                `json:"legacy_only"`
	LedgerOnly         int                `json:"ledger_only"`
}

// Reconciler performs read-only cross-validation of the ledger against
// the legacy projection. It has no side effects and never auto-corrects:
// anomalies are surfaced for manual review.
type Reconciler struct {
	Ledger    LedgerSink
	Legacy    LegacySink
	Tolerance time.Duration
}

// NewReconciler builds a reconciler with the default 6-minute tolerance.
func NewReconciler(ledger LedgerSink, legacy LegacySink) *Reconciler {
	return &Reconciler{Ledger: ledger, Legacy: legacy, Tolerance: DefaultCompareTolerance}
}

// Compare recomputes the worked duration from the ledger's
// check-in/check-out pairs and checks it against the legacy row's
// end-start span, flagging duration drift beyond the tolerance and
// boundary mismatches on the first check-in / last check-out.
func (rc *Reconciler) Compare(key Key) (ComparisonReport, error) {
	report := ComparisonReport{RegID: key.RegID, Date: key.Date, Discrepancies: []Discrepancy{}}

	entries, err := rc.Ledger.EntriesForDay(key)
	if err != nil {
		return report, fmt.Errorf("failed to read ledger entries for %s on %s: %w", key.RegID, key.Date, err)
	}
	report.LedgerSummary = Summarize(entries)
	report.Discrepancies = append(report.Discrepancies, VerifyAlternation(entries)...)

	bounds, err := rc.Legacy.DayBounds(key)
	if err != nil {
		return report, fmt.Errorf("failed to read legacy bounds for %s on %s: %w", key.RegID, key.Date, err)
	}
	report.LegacyBounds = bounds

	switch {
	case len(entries) == 0 && bounds == nil:
		return report, nil
	case len(entries) == 0:
		report.Discrepancies = append(report.Discrepancies, Discrepancy{
			Type:   DiscrepancyLegacyOnly,
			Detail: "legacy attendance row exists but the ledger has no entries",
		})
		return report, nil
	case bounds == nil:
		report.Discrepancies = append(report.Discrepancies, Discrepancy{
			Type:   DiscrepancyLedgerOnly,
			Detail: fmt.Sprintf("ledger has %d entries but no legacy attendance row exists", len(entries)),
		})
		return report, nil
	}

	report.LegacyTotalHours = roundHours(bounds.End.Sub(bounds.Start).Hours())

	if diff := math.Abs(report.LegacyTotalHours - report.LedgerSummary.TotalHours); diff > rc.Tolerance.Hours() {
		report.Discrepancies = append(report.Discrepancies, Discrepancy{
			Type: DiscrepancyTotalHours,
			Detail: fmt.Sprintf("ledger total %.2fh vs legacy span %.2fh (diff %.2fh exceeds tolerance %.2fh)",
				report.LedgerSummary.TotalHours, report.LegacyTotalHours, diff, rc.Tolerance.Hours()),
		})
	}

	if first := FirstCheckIn(entries); first != nil && !sameSecond(*first, bounds.Start) {
		report.Discrepancies = append(report.Discrepancies, Discrepancy{
			Type: DiscrepancyBoundaries,
			Detail: fmt.Sprintf("first check_in %s != legacy start_time %s",
				first.Format(TimeOfDayLayout), bounds.Start.Format(TimeOfDayLayout)),
		})
	}
	if last := LastCheckOut(entries); last != nil && !sameSecond(*last, bounds.End) {
		report.Discrepancies = append(report.Discrepancies, Discrepancy{
			Type: DiscrepancyBoundaries,
			Detail: fmt.Sprintf("last check_out %s != legacy end_time %s",
				last.Format(TimeOfDayLayout), bounds.End.Format(TimeOfDayLayout)),
		})
	}

	return report, nil
}

// DailyReport compares every employee with activity in either system on
// the given date for one tenant.
func (rc *Reconciler) DailyReport(tenantID uint, date string) (DailyComparisonReport, error) {
	report := DailyComparisonReport{TenantID: tenantID, Date: date, Comparisons: []ComparisonReport{}}

	ledgerIDs, err := rc.Ledger.RegIDsForDay(tenantID, date)
	if err != nil {
		return report, fmt.Errorf("failed to list ledger reg IDs for %s: %w", date, err)
	}
	legacyIDs, err := rc.Legacy.RegIDsForDay(tenantID, date)
	if err != nil {
		return report, fmt.Errorf("failed to list legacy reg IDs for %s: %w", date, err)
	}

	seen := make(map[string]bool)
	all := make([]string, 0, len(ledgerIDs)+len(legacyIDs))
	for _, id := range append(append([]string{}, ledgerIDs...), legacyIDs...) {
		if !seen[id] {
			seen[id] = true
			all = append(all, id)
		}
	}
	sort.Strings(all)

	for _, regID := range all {
		cmp, err := rc.Compare(Key{TenantID: tenantID, RegID: regID, Date: date})
		if err != nil {
			return report, err
		}
		report.Comparisons = append(report.Comparisons, cmp)

		switch {
		case len(cmp.Discrepancies) == 0:
			report.BothSystemsAgree++
		case hasDiscrepancy(cmp, DiscrepancyLegacyOnly):
			report.LegacyOnly++
			report.DiscrepanciesFound++
		case hasDiscrepancy(cmp, DiscrepancyLedgerOnly):
			report.LedgerOnly++
			report.DiscrepanciesFound++
		default:
			report.DiscrepanciesFound++
		}
	}

	return report, nil
}

// VerifyAlternation checks the alternation invariant over a day's
// ordered entries: check_in(1), check_out(1), check_in(2), ... Breaks
// are critical anomalies; they are reported, never auto-corrected.
func VerifyAlternation(entries []LedgerEntry) []Discrepancy {
	discrepancies := []Discrepancy{}
	expectedAction := ActionCheckIn
	expectedSeq := 1

	for i, e := range entries {
		if e.EntryType != expectedAction || e.Sequence != expectedSeq {
			d := Discrepancy{
				Type: DiscrepancyAlternation,
				Detail: fmt.Sprintf("entry %d is %s(%d), expected %s(%d)",
					i, e.EntryType, e.Sequence, expectedAction, expectedSeq),
			}
			log.Printf("reconciler: CRITICAL alternation break: %s", d.Detail)
			discrepancies = append(discrepancies, d)
			// resync expectations from the observed entry
			expectedAction = e.EntryType
			expectedSeq = e.Sequence
		}
		if expectedAction == ActionCheckIn {
			expectedAction = ActionCheckOut
		} else {
			expectedAction = ActionCheckIn
			expectedSeq++
		}
	}
	return discrepancies
}

func hasDiscrepancy(report ComparisonReport, t DiscrepancyType) bool {
	for _, d := range report.Discrepancies {
		if d.Type == t {
			return true
		}
	}
	return false
}

func sameSecond(a, b time.Time) bool {
	return a.Truncate(time.Second).Equal(b.Truncate(time.Second))
}
