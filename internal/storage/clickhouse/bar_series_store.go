package clickhouse

import (
	"context"
	"fmt"

	"alpha-search-lab/internal/domain"
	"alpha-search-lab/internal/storage"
)

// BarSeriesStore implements storage.BarSeriesStore using ClickHouse.
type BarSeriesStore struct {
	conn *Conn
}

// NewBarSeriesStore creates a new BarSeriesStore.
func NewBarSeriesStore(conn *Conn) *BarSeriesStore {
	return &BarSeriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.BarSeriesStore = (*BarSeriesStore)(nil)

// InsertBulk adds bars for one (symbol, interval). Fails the entire
// batch on a duplicate (symbol, interval, timestamp_ms). MergeTree
// does not enforce uniqueness at insert time, so duplicates are
// checked explicitly before the batch is sent.
func (s *BarSeriesStore) InsertBulk(ctx context.Context, symbol, interval string, bars []domain.Bar) error {
	if symbol == "" || interval == "" {
		return storage.ErrInvalidInput
	}
	if len(bars) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[int64]struct{}, len(bars))
	for _, b := range bars {
		if _, exists := seen[b.TimestampMs]; exists {
			return storage.ErrDuplicateKey
		}
		seen[b.TimestampMs] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	minTs, maxTs := bars[0].TimestampMs, bars[0].TimestampMs
	for _, b := range bars[1:] {
		if b.TimestampMs < minTs {
			minTs = b.TimestampMs
		}
		if b.TimestampMs > maxTs {
			maxTs = b.TimestampMs
		}
	}
	existing, err := s.existingTimestamps(ctx, symbol, interval, minTs, maxTs)
	if err != nil {
		return fmt.Errorf("check existing bars: %w", err)
	}
	for _, b := range bars {
		if _, exists := existing[b.TimestampMs]; exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO ohlcv_bars (
			symbol, interval, timestamp_ms, open, high, low, close, volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, b := range bars {
		err = batch.Append(
			symbol, interval, uint64(b.TimestampMs),
			b.Open, b.High, b.Low, b.Close, b.Volume,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetBySymbol retrieves the full series for a symbol and interval,
// ordered by timestamp ASC.
func (s *BarSeriesStore) GetBySymbol(ctx context.Context, symbol, interval string) (*domain.PriceSeries, error) {
	query := `
		SELECT timestamp_ms, open, high, low, close, volume
		FROM ohlcv_bars
		WHERE symbol = ? AND interval = ?
		ORDER BY timestamp_ms ASC
	`
	return s.querySeries(ctx, symbol, interval, query, symbol, interval)
}

// GetByTimeRange retrieves bars within [start, end] (inclusive, Unix ms),
// ordered by timestamp ASC.
func (s *BarSeriesStore) GetByTimeRange(ctx context.Context, symbol, interval string, start, end int64) (*domain.PriceSeries, error) {
	query := `
		SELECT timestamp_ms, open, high, low, close, volume
		FROM ohlcv_bars
		WHERE symbol = ? AND interval = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`
	return s.querySeries(ctx, symbol, interval, query, symbol, interval, uint64(start), uint64(end))
}

// querySeries runs a bar query and assembles the series.
func (s *BarSeriesStore) querySeries(ctx context.Context, symbol, interval, query string, args ...any) (*domain.PriceSeries, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []domain.Bar
	for rows.Next() {
		var (
			ts  uint64
			bar domain.Bar
		)
		if err := rows.Scan(&ts, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		bar.TimestampMs = int64(ts)
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars: %w", err)
	}

	if len(bars) == 0 {
		return nil, storage.ErrNotFound
	}

	return &domain.PriceSeries{
		Symbol:   symbol,
		Interval: interval,
		Bars:     bars,
	}, nil
}

// existingTimestamps returns the set of stored timestamps within the
// given range for a (symbol, interval).
func (s *BarSeriesStore) existingTimestamps(ctx context.Context, symbol, interval string, minTs, maxTs int64) (map[int64]struct{}, error) {
	query := `
		SELECT timestamp_ms
		FROM ohlcv_bars
		WHERE symbol = ? AND interval = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
	`

	rows, err := s.conn.Query(ctx, query, symbol, interval, uint64(minTs), uint64(maxTs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make(map[int64]struct{})
	for rows.Next() {
		var ts uint64
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		existing[int64(ts)] = struct{}{}
	}
	return existing, rows.Err()
}
