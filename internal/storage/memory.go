package storage

import (
	"context"
	"errors"
	"sync"

	"bfoalign/internal/model"
)

var ErrNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	order       []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.order = nil
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, record model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	if record.RunID == "" {
		return errors.New("run id is required")
	}
	if _, ok := s.runs[record.RunID]; !ok {
		s.order = append(s.order, record.RunID)
	}
	s.runs[record.RunID] = cloneRecord(record)
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, runID string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.RunRecord{}, false, ErrNotInitialized
	}
	record, ok := s.runs[runID]
	if !ok {
		return model.RunRecord{}, false, nil
	}
	return cloneRecord(record), true, nil
}

// ListRuns returns records in the order they were first saved.
func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	out := make([]model.RunRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneRecord(s.runs[id]))
	}
	return out, nil
}

func cloneRecord(record model.RunRecord) model.RunRecord {
	record.Cycles = append([]model.CycleDiagnostics(nil), record.Cycles...)
	record.FinalScores = append([]float64(nil), record.FinalScores...)
	record.FinalPopulation = append([]string(nil), record.FinalPopulation...)
	return record
}
