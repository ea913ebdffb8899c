package postgres

import (
	"context"
	"fmt"
	"time"

	"alpha-search-lab/internal/domain"
	"alpha-search-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a new run header. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.SearchRun) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO search_runs (
			run_id, strategy, symbol, seed, sampler, budget,
			status, trials_done, best_trial_id, best_score,
			started_at, finished_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12
		)
	`

	_, err := s.pool.Exec(ctx, query,
		r.RunID, r.Strategy, r.Symbol, r.Seed, r.Sampler, r.Budget,
		string(r.Status), r.TrialsDone, r.BestTrialID, r.BestScore,
		r.StartedAt, r.FinishedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		if isConnectionError(err) {
			return fmt.Errorf("insert run: %w", storage.ErrUnavailable)
		}
		return fmt.Errorf("insert search run: %w", err)
	}
	return nil
}

// UpdateProgress updates the mutable bookkeeping fields of a run.
func (s *RunStore) UpdateProgress(ctx context.Context, r *domain.SearchRun) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE search_runs
		SET status = $2, trials_done = $3, best_trial_id = $4,
		    best_score = $5, finished_at = $6
		WHERE run_id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		r.RunID, string(r.Status), r.TrialsDone, r.BestTrialID,
		r.BestScore, r.FinishedAt,
	)
	if err != nil {
		if isConnectionError(err) {
			return fmt.Errorf("update run: %w", storage.ErrUnavailable)
		}
		return fmt.Errorf("update search run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.SearchRun, error) {
	query := `
		SELECT run_id, strategy, symbol, seed, sampler, budget,
		       status, trials_done, best_trial_id, best_score,
		       started_at, finished_at
		FROM search_runs
		WHERE run_id = $1
	`

	row := s.pool.QueryRow(ctx, query, runID)
	r, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

// List retrieves all runs, ordered by started_at DESC.
func (s *RunStore) List(ctx context.Context) ([]*domain.SearchRun, error) {
	query := `
		SELECT run_id, strategy, symbol, seed, sampler, budget,
		       status, trials_done, best_trial_id, best_score,
		       started_at, finished_at
		FROM search_runs
		ORDER BY started_at DESC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		if isConnectionError(err) {
			return nil, fmt.Errorf("query runs: %w", storage.ErrUnavailable)
		}
		return nil, fmt.Errorf("query search runs: %w", err)
	}
	defer rows.Close()

	var result []*domain.SearchRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return result, nil
}

// scanRun reconstructs a SearchRun from one row.
func scanRun(row rowScanner) (*domain.SearchRun, error) {
	var (
		r          domain.SearchRun
		status     string
		startedAt  time.Time
		finishedAt *time.Time
	)

	err := row.Scan(
		&r.RunID, &r.Strategy, &r.Symbol, &r.Seed, &r.Sampler, &r.Budget,
		&status, &r.TrialsDone, &r.BestTrialID, &r.BestScore,
		&startedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Status = domain.RunStatus(status)
	r.StartedAt = startedAt.UTC()
	if finishedAt != nil {
		utc := finishedAt.UTC()
		r.FinishedAt = &utc
	}
	return &r, nil
}
