package memory

import (
	"context"
	"sort"
	"sync"

	"alpha-search-lab/internal/domain"
	"alpha-search-lab/internal/storage"
)

// seriesKey identifies one stored bar series.
type seriesKey struct {
	symbol   string
	interval string
}

// BarSeriesStore is an in-memory implementation of storage.BarSeriesStore.
type BarSeriesStore struct {
	mu   sync.RWMutex
	data map[seriesKey][]domain.Bar
}

// NewBarSeriesStore creates a new in-memory bar series store.
func NewBarSeriesStore() *BarSeriesStore {
	return &BarSeriesStore{
		data: make(map[seriesKey][]domain.Bar),
	}
}

// Compile-time interface check.
var _ storage.BarSeriesStore = (*BarSeriesStore)(nil)

// InsertBulk adds bars for one (symbol, interval). Fails the entire
// batch on a duplicate timestamp, existing or intra-batch.
func (s *BarSeriesStore) InsertBulk(_ context.Context, symbol, interval string, bars []domain.Bar) error {
	if symbol == "" || interval == "" {
		return storage.ErrInvalidInput
	}
	if len(bars) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := seriesKey{symbol, interval}
	existing := make(map[int64]struct{}, len(s.data[key]))
	for _, b := range s.data[key] {
		existing[b.TimestampMs] = struct{}{}
	}

	batch := make(map[int64]struct{}, len(bars))
	for _, b := range bars {
		if _, dup := existing[b.TimestampMs]; dup {
			return storage.ErrDuplicateKey
		}
		if _, dup := batch[b.TimestampMs]; dup {
			return storage.ErrDuplicateKey
		}
		batch[b.TimestampMs] = struct{}{}
	}

	merged := append(append([]domain.Bar(nil), s.data[key]...), bars...)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].TimestampMs < merged[j].TimestampMs
	})
	s.data[key] = merged
	return nil
}

// GetBySymbol retrieves the full series, ordered by timestamp ASC.
func (s *BarSeriesStore) GetBySymbol(_ context.Context, symbol, interval string) (*domain.PriceSeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bars, exists := s.data[seriesKey{symbol, interval}]
	if !exists || len(bars) == 0 {
		return nil, storage.ErrNotFound
	}

	return &domain.PriceSeries{
		Symbol:   symbol,
		Interval: interval,
		Bars:     append([]domain.Bar(nil), bars...),
	}, nil
}

// GetByTimeRange retrieves bars within [start, end] inclusive.
func (s *BarSeriesStore) GetByTimeRange(_ context.Context, symbol, interval string, start, end int64) (*domain.PriceSeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bars, exists := s.data[seriesKey{symbol, interval}]
	if !exists {
		return nil, storage.ErrNotFound
	}

	var filtered []domain.Bar
	for _, b := range bars {
		if b.TimestampMs >= start && b.TimestampMs <= end {
			filtered = append(filtered, b)
		}
	}
	if len(filtered) == 0 {
		return nil, storage.ErrNotFound
	}

	return &domain.PriceSeries{
		Symbol:   symbol,
		Interval: interval,
		Bars:     filtered,
	}, nil
}
