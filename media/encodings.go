package media

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// EncodingStore holds the enrolled face embeddings per tenant, keyed by
// registration ID, and persists them as one JSON file per tenant so the
// kiosk can come back up without re-encoding every portrait.
type EncodingStore struct {
	mu      sync.RWMutex
	dir     string
	tenants map[uint]map[string][]float32
}

// NewEncodingStore creates an encoding store rooted at dir
func NewEncodingStore(dir string) (*EncodingStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create encodings directory '%s': %w", dir, err)
	}
	return &EncodingStore{
		dir:     dir,
		tenants: make(map[uint]map[string][]float32),
	}, nil
}

// Load reads every persisted tenant encoding file into memory
func (s *EncodingStore) Load() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read encodings directory '%s': %w", s.dir, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		tenantID, err := strconv.ParseUint(strings.TrimSuffix(entry.Name(), ".json"), 10, 32)
		if err != nil {
			log.Printf("encodings: skipping unrecognized file %s", entry.Name())
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read encoding file %s: %w", entry.Name(), err)
		}

		var encodings map[string][]float32
		if err := json.Unmarshal(data, &encodings); err != nil {
			return fmt.Errorf("failed to parse encoding file %s: %w", entry.Name(), err)
		}

		s.tenants[uint(tenantID)] = encodings
		loaded += len(encodings)
	}

	log.Printf("encodings: loaded %d encodings across %d tenants", loaded, len(s.tenants))
	return nil
}

// Set stores (or replaces) one person's embedding and persists the
// tenant's file
func (s *EncodingStore) Set(tenantID uint, regID string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("refusing to store empty embedding for %s", regID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	encodings, ok := s.tenants[tenantID]
	if !ok {
		encodings = make(map[string][]float32)
		s.tenants[tenantID] = encodings
	}
	encodings[regID] = embedding

	return s.persistLocked(tenantID)
}

// Remove drops one person's embedding and persists the tenant's file
func (s *EncodingStore) Remove(tenantID uint, regID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	encodings, ok := s.tenants[tenantID]
	if !ok {
		return nil
	}
	if _, present := encodings[regID]; !present {
		return nil
	}
	delete(encodings, regID)

	return s.persistLocked(tenantID)
}

// Match finds the enrolled person most similar to the probe embedding.
// Returns ok=false when nothing clears the threshold.
func (s *EncodingStore) Match(tenantID uint, probe []float32, threshold float64) (string, float32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	encodings, ok := s.tenants[tenantID]
	if !ok || len(encodings) == 0 {
		return "", 0, false
	}

	bestRegID := ""
	var bestSimilarity float32
	for regID, enrolled := range encodings {
		similarity := CosineSimilarity(probe, enrolled)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			bestRegID = regID
		}
	}

	if bestRegID == "" || float64(bestSimilarity) < threshold {
		return "", bestSimilarity, false
	}
	return bestRegID, bestSimilarity, true
}

// Count returns the number of enrolled embeddings for a tenant
func (s *EncodingStore) Count(tenantID uint) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tenants[tenantID])
}

// persistLocked writes one tenant's encodings to disk. Caller holds s.mu.
func (s *EncodingStore) persistLocked(tenantID uint) error {
	data, err := json.Marshal(s.tenants[tenantID])
	if err != nil {
		return fmt.Errorf("failed to marshal encodings for tenant %d: %w", tenantID, err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%d.json", tenantID))
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write encoding file for tenant %d: %w", tenantID, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace encoding file for tenant %d: %w", tenantID, err)
	}
	return nil
}
