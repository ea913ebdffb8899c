package memory

import (
	"context"
	"sort"
	"sync"

	"alpha-search-lab/internal/domain"
	"alpha-search-lab/internal/storage"
)

// TrialStore is an in-memory implementation of storage.TrialStore.
type TrialStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TrialResult // keyed by trial_id
}

// NewTrialStore creates a new in-memory trial store.
func NewTrialStore() *TrialStore {
	return &TrialStore{
		data: make(map[string]*domain.TrialResult),
	}
}

// Compile-time interface check.
var _ storage.TrialStore = (*TrialStore)(nil)

// Append adds a new trial result. Returns ErrDuplicateKey if trial_id exists.
func (s *TrialStore) Append(_ context.Context, t *domain.TrialResult) error {
	if t == nil || t.TrialID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TrialID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := cloneTrial(t)
	s.data[t.TrialID] = cp
	return nil
}

// ListByRun retrieves all trials of a run, ordered by seq ASC.
func (s *TrialStore) ListByRun(_ context.Context, runID string) ([]*domain.TrialResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TrialResult
	for _, t := range s.data {
		if t.RunID == runID {
			result = append(result, cloneTrial(t))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Seq < result[j].Seq
	})
	return result, nil
}

// BestByRun retrieves up to limit successful trials of a run,
// ordered best-first: score DESC, then seq ASC.
func (s *TrialStore) BestByRun(_ context.Context, runID string, limit int) ([]*domain.TrialResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TrialResult
	for _, t := range s.data {
		if t.RunID == runID && t.Status == domain.TrialStatusOK {
			result = append(result, cloneTrial(t))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].Seq < result[j].Seq
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// cloneTrial deep-copies a trial so callers cannot mutate stored state.
func cloneTrial(t *domain.TrialResult) *domain.TrialResult {
	cp := *t
	cp.Binding = t.Binding.Clone()
	if t.WindowScores != nil {
		cp.WindowScores = make(map[string]float64, len(t.WindowScores))
		for k, v := range t.WindowScores {
			cp.WindowScores[k] = v
		}
	}
	if t.Performance != nil {
		perf := *t.Performance
		perf.Trades = append([]domain.TradeRecord(nil), t.Performance.Trades...)
		perf.BarReturns = append([]float64(nil), t.Performance.BarReturns...)
		cp.Performance = &perf
	}
	return &cp
}
