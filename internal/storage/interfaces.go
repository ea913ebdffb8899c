package storage

import (
	"context"

	"alpha-search-lab/internal/domain"
)

// RunStore provides access to search_runs storage.
type RunStore interface {
	// Insert adds a new run header. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.SearchRun) error

	// UpdateProgress updates the mutable bookkeeping fields of a run.
	// Run headers are the one exception to append-only semantics: the
	// engine updates status, trial counters and best-trial pointers as
	// the run advances. Returns ErrNotFound if run_id does not exist.
	UpdateProgress(ctx context.Context, r *domain.SearchRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.SearchRun, error)

	// List retrieves all runs, ordered by started_at DESC.
	List(ctx context.Context) ([]*domain.SearchRun, error)
}

// TrialStore provides access to trial_results storage.
// Trials are append-once, read-many: no update or delete operations.
type TrialStore interface {
	// Append adds a new trial result. Returns ErrDuplicateKey if
	// trial_id exists. Safe for concurrent use; each append is atomic.
	Append(ctx context.Context, t *domain.TrialResult) error

	// ListByRun retrieves all trials of a run, ordered by seq ASC.
	ListByRun(ctx context.Context, runID string) ([]*domain.TrialResult, error)

	// BestByRun retrieves up to limit successful trials of a run,
	// ordered best-first: score DESC, then seq ASC.
	BestByRun(ctx context.Context, runID string, limit int) ([]*domain.TrialResult, error)
}

// BarSeriesStore provides access to OHLCV bar storage.
type BarSeriesStore interface {
	// InsertBulk adds bars for one (symbol, interval). Fails the
	// entire batch on a duplicate (symbol, interval, timestamp_ms).
	InsertBulk(ctx context.Context, symbol, interval string, bars []domain.Bar) error

	// GetBySymbol retrieves the full series for a symbol and interval,
	// ordered by timestamp ASC. Returns ErrNotFound when no bars exist.
	GetBySymbol(ctx context.Context, symbol, interval string) (*domain.PriceSeries, error)

	// GetByTimeRange retrieves bars within [start, end] (inclusive, Unix ms),
	// ordered by timestamp ASC. Returns ErrNotFound when no bars match.
	GetByTimeRange(ctx context.Context, symbol, interval string, start, end int64) (*domain.PriceSeries, error)
}
