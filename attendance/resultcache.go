package attendance

import (
	"sync"
	"time"
)

// ScanOutcome is what a polling UI sees for the most recent scan of a person.
type ScanOutcome string

const (
	ScanSuccess  ScanOutcome = "success"
	ScanBlocked  ScanOutcome = "blocked"
	ScanError    ScanOutcome = "error"
	ScanNoResult ScanOutcome = "no_result"
)

// ScanResult is the human-facing resolution of one recognition event.
type ScanResult struct {
	Outcome    ScanOutcome `json:"outcome"`
	Action     Action      `json:"action,omitempty"`
	Sequence   int         `json:"sequence,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	RecordedAt time.Time   `json:"recorded_at"`
}

type resultKey struct {
	tenantID uint
	regID    string
}

type resultEntry struct {
	result   ScanResult
	storedAt time.Time
}

// ResultCache is a bounded TTL cache of last-scan results keyed by
// (tenant, reg_id), injected into the scan pipeline and polled by the
// UI. Expired entries read as no_result; when the cache is full the
// oldest entry is evicted.
type ResultCache struct {
	ttl        time.Duration
	maxEntries int

	// now is the cache clock; overridable in tests
	now func() time.Time

	mu      sync.Mutex
	entries map[resultKey]resultEntry
}

// NewResultCache creates a cache holding at most maxEntries results for
// at most ttl each.
func NewResultCache(ttl time.Duration, maxEntries int) *ResultCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &ResultCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		entries:    make(map[resultKey]resultEntry),
	}
}

// Put stores the latest result for a person, evicting the oldest entry
// if the cache is at capacity.
func (c *ResultCache) Put(tenantID uint, regID string, result ScanResult) {
	key := resultKey{tenantID: tenantID, regID: regID}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = resultEntry{result: result, storedAt: c.now()}
}

// Get returns the cached result for a person, or a no_result outcome
// when nothing fresh is cached.
func (c *ResultCache) Get(tenantID uint, regID string) ScanResult {
	key := resultKey{tenantID: tenantID, regID: regID}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return ScanResult{Outcome: ScanNoResult}
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return ScanResult{Outcome: ScanNoResult}
	}
	return entry.result
}

// Len reports the number of live entries, expired ones included until read.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ResultCache) evictOldestLocked() {
	var oldestKey resultKey
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.storedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.storedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
