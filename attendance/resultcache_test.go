package attendance

import (
	"fmt"
	"testing"
	"time"
)

func TestResultCachePutGet(t *testing.T) {
	c := NewResultCache(30*time.Second, 16)
	c.Put(1, "EMP001", ScanResult{Outcome: ScanSuccess, Action: ActionCheckIn, Sequence: 1})

	got := c.Get(1, "EMP001")
	if got.Outcome != ScanSuccess || got.Action != ActionCheckIn {
		t.Errorf("unexpected cached result: %+v", got)
	}

	if c.Get(1, "EMP999").Outcome != ScanNoResult {
		t.Error("unknown reg ID should read as no_result")
	}
	if c.Get(2, "EMP001").Outcome != ScanNoResult {
		t.Error("results must be scoped per tenant")
	}
}

func TestResultCacheExpiry(t *testing.T) {
	c := NewResultCache(30*time.Second, 16)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	c.Put(1, "EMP001", ScanResult{Outcome: ScanSuccess})

	c.now = func() time.Time { return base.Add(30 * time.Second) }
	if c.Get(1, "EMP001").Outcome != ScanSuccess {
		t.Error("result at the TTL edge should still be served")
	}

	c.now = func() time.Time { return base.Add(31 * time.Second) }
	if c.Get(1, "EMP001").Outcome != ScanNoResult {
		t.Error("expired result should read as no_result")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be dropped on read, cache holds %d", c.Len())
	}
}

func TestResultCacheEvictsOldestAtCapacity(t *testing.T) {
	c := NewResultCache(time.Hour, 3)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Second)
		c.now = func() time.Time { return at }
		c.Put(1, fmt.Sprintf("EMP%03d", i), ScanResult{Outcome: ScanSuccess})
	}

	c.now = func() time.Time { return base.Add(time.Minute) }
	c.Put(1, "EMP100", ScanResult{Outcome: ScanBlocked})

	if c.Len() != 3 {
		t.Errorf("cache should stay at capacity, holds %d", c.Len())
	}
	if c.Get(1, "EMP000").Outcome != ScanNoResult {
		t.Error("the oldest entry should have been evicted")
	}
	if c.Get(1, "EMP100").Outcome != ScanBlocked {
		t.Error("the new entry should be present after eviction")
	}
}

func TestResultCacheUpdateDoesNotEvict(t *testing.T) {
	c := NewResultCache(time.Hour, 2)
	c.Put(1, "EMP001", ScanResult{Outcome: ScanSuccess})
	c.Put(1, "EMP002", ScanResult{Outcome: ScanSuccess})

	// overwriting an existing key at capacity must not push anything out
	c.Put(1, "EMP001", ScanResult{Outcome: ScanBlocked})

	if c.Get(1, "EMP001").Outcome != ScanBlocked {
		t.Error("update should replace the cached result")
	}
	if c.Get(1, "EMP002").Outcome != ScanSuccess {
		t.Error("the other entry should survive an in-place update")
	}
}
