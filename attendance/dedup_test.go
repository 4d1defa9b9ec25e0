package attendance

import (
	"testing"
	"time"
)

var dedupKey = Key{TenantID: 1, RegID: "EMP001", Date: "2024-03-01"}

func TestDeduplicatorSuppressesWithinWindow(t *testing.T) {
	d := NewDeduplicator(60 * time.Second)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	if !d.Accept(dedupKey, base) {
		t.Fatal("first detection of the day must be accepted")
	}
	if d.Accept(dedupKey, base.Add(5*time.Second)) {
		t.Error("detection 5s after acceptance should be suppressed")
	}
	if d.Accept(dedupKey, base.Add(59*time.Second)) {
		t.Error("detection 59s after acceptance should be suppressed")
	}
	if !d.Accept(dedupKey, base.Add(60*time.Second)) {
		t.Error("detection exactly at the window edge should be accepted")
	}
}

func TestDeduplicatorWindowAnchorsOnAcceptance(t *testing.T) {
	d := NewDeduplicator(60 * time.Second)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	d.Accept(dedupKey, base)
	// a burst of rejected frames must not extend the suppression window
	for i := 1; i <= 50; i++ {
		d.Accept(dedupKey, base.Add(time.Duration(i)*time.Second))
	}
	if !d.Accept(dedupKey, base.Add(61*time.Second)) {
		t.Error("window should be measured from the last accepted event, not the last detection")
	}
}

func TestDeduplicatorKeysAreIndependent(t *testing.T) {
	d := NewDeduplicator(60 * time.Second)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	other := Key{TenantID: 1, RegID: "EMP002", Date: "2024-03-01"}
	otherTenant := Key{TenantID: 2, RegID: "EMP001", Date: "2024-03-01"}

	d.Accept(dedupKey, base)
	if !d.Accept(other, base.Add(time.Second)) {
		t.Error("a different person must not be suppressed")
	}
	if !d.Accept(otherTenant, base.Add(time.Second)) {
		t.Error("the same reg ID in a different tenant must not be suppressed")
	}
}

func TestDeduplicatorSymmetricWindow(t *testing.T) {
	d := NewDeduplicator(60 * time.Second)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	d.Accept(dedupKey, base)
	// an out-of-order event carrying an earlier timestamp is still a burst
	if d.Accept(dedupKey, base.Add(-30*time.Second)) {
		t.Error("detection 30s before the accepted marker should be suppressed")
	}
	if !d.Accept(dedupKey, base.Add(-2*time.Minute)) {
		t.Error("detection well before the window should be accepted")
	}
}

func TestDeduplicatorForget(t *testing.T) {
	d := NewDeduplicator(60 * time.Second)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	d.Accept(dedupKey, base)
	d.Forget(dedupKey)
	if !d.Accept(dedupKey, base.Add(time.Second)) {
		t.Error("detection right after Forget should be accepted")
	}
}

func TestDeduplicatorPruneBefore(t *testing.T) {
	d := NewDeduplicator(60 * time.Second)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	d.Accept(dedupKey, base)
	d.PruneBefore(base.Add(time.Hour))
	if !d.Accept(dedupKey, base.Add(time.Second)) {
		t.Error("pruned marker should no longer suppress")
	}
}
