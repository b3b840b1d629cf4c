package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/emlakradar/api/pkg/model"
)

// MemoryRunStore keeps crawl run records in process memory. Runs are cheap
// to recreate, so the sqlite deployment does not persist them.
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]model.CrawlRun
}

func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]model.CrawlRun)}
}

func (s *MemoryRunStore) CreateRun(_ context.Context, run model.CrawlRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.RunID]; exists {
		return fmt.Errorf("run %s already exists", run.RunID)
	}
	s.runs[run.RunID] = run
	return nil
}

func (s *MemoryRunStore) UpdateRun(_ context.Context, run model.CrawlRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.RunID]; !exists {
		return fmt.Errorf("run %s not found", run.RunID)
	}
	s.runs[run.RunID] = run
	return nil
}

func (s *MemoryRunStore) GetRun(_ context.Context, runID string) (model.CrawlRun, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	return run, ok, nil
}

func (s *MemoryRunStore) ListRuns(_ context.Context, limit int) ([]model.CrawlRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.CrawlRun, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
