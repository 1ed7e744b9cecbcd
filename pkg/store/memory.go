package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps run records in process memory. Thread-safe via RWMutex.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]RunRecord
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]RunRecord)}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.RunID] = cloneRecord(rec)
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, runID string) (RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[runID]
	if !ok {
		return RunRecord{}, ErrNotFound
	}
	return cloneRecord(rec), nil
}

// ListRecent implements Store. Records are ordered newest first by start
// time, run id breaking ties.
func (s *MemoryStore) ListRecent(_ context.Context, limit int) ([]RunRecord, error) {
	s.mu.RLock()
	out := make([]RunRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, cloneRecord(rec))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].RunID < out[j].RunID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountByVerdict implements Store.
func (s *MemoryStore) CountByVerdict(_ context.Context) (map[Verdict]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[Verdict]int)
	for _, rec := range s.records {
		counts[rec.Verdict]++
	}
	return counts, nil
}

// cloneRecord copies the phases slice so callers cannot mutate stored state.
func cloneRecord(rec RunRecord) RunRecord {
	out := rec
	if rec.Phases != nil {
		out.Phases = make([]PhaseOutcome, len(rec.Phases))
		copy(out.Phases, rec.Phases)
	}
	return out
}
