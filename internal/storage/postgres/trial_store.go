package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"alpha-search-lab/internal/domain"
	"alpha-search-lab/internal/storage"
)

// TrialStore implements storage.TrialStore using PostgreSQL.
type TrialStore struct {
	pool *Pool
}

// NewTrialStore creates a new TrialStore.
func NewTrialStore(pool *Pool) *TrialStore {
	return &TrialStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TrialStore = (*TrialStore)(nil)

// Append adds a new trial result. Returns ErrDuplicateKey if trial_id
// exists and ErrUnavailable when the server cannot be reached.
func (s *TrialStore) Append(ctx context.Context, t *domain.TrialResult) error {
	if t == nil || t.TrialID == "" {
		return storage.ErrInvalidInput
	}

	bindingJSON, err := json.Marshal(t.Binding)
	if err != nil {
		return fmt.Errorf("marshal binding: %w", err)
	}

	windowScoresJSON, err := json.Marshal(t.WindowScores)
	if err != nil {
		return fmt.Errorf("marshal window scores: %w", err)
	}

	var perfJSON []byte
	if t.Performance != nil {
		perfJSON, err = json.Marshal(t.Performance)
		if err != nil {
			return fmt.Errorf("marshal performance: %w", err)
		}
	}

	query := `
		INSERT INTO trial_results (
			trial_id, run_id, seq, binding,
			status, error, score, window_scores,
			performance, created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10
		)
	`

	_, err = s.pool.Exec(ctx, query,
		t.TrialID, t.RunID, t.Seq, bindingJSON,
		string(t.Status), t.Error, t.Score, windowScoresJSON,
		perfJSON, t.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		if isConnectionError(err) {
			return fmt.Errorf("append trial: %w", storage.ErrUnavailable)
		}
		return fmt.Errorf("insert trial result: %w", err)
	}
	return nil
}

// ListByRun retrieves all trials of a run, ordered by seq ASC.
func (s *TrialStore) ListByRun(ctx context.Context, runID string) ([]*domain.TrialResult, error) {
	query := `
		SELECT trial_id, run_id, seq, binding,
		       status, error, score, window_scores,
		       performance, created_at
		FROM trial_results
		WHERE run_id = $1
		ORDER BY seq ASC
	`
	return s.queryTrials(ctx, query, runID)
}

// BestByRun retrieves up to limit successful trials of a run,
// ordered best-first: score DESC, then seq ASC.
func (s *TrialStore) BestByRun(ctx context.Context, runID string, limit int) ([]*domain.TrialResult, error) {
	query := `
		SELECT trial_id, run_id, seq, binding,
		       status, error, score, window_scores,
		       performance, created_at
		FROM trial_results
		WHERE run_id = $1 AND status = 'OK'
		ORDER BY score DESC, seq ASC
		LIMIT $2
	`
	return s.queryTrials(ctx, query, runID, limit)
}

// queryTrials runs a trial query and scans all rows.
func (s *TrialStore) queryTrials(ctx context.Context, query string, args ...any) ([]*domain.TrialResult, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		if isConnectionError(err) {
			return nil, fmt.Errorf("query trials: %w", storage.ErrUnavailable)
		}
		return nil, fmt.Errorf("query trials: %w", err)
	}
	defer rows.Close()

	var result []*domain.TrialResult
	for rows.Next() {
		t, err := scanTrial(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trials: %w", err)
	}
	return result, nil
}

// rowScanner matches both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTrial reconstructs a TrialResult from one row.
func scanTrial(row rowScanner) (*domain.TrialResult, error) {
	var (
		t                domain.TrialResult
		status           string
		bindingJSON      []byte
		windowScoresJSON []byte
		perfJSON         []byte
		createdAt        time.Time
	)

	err := row.Scan(
		&t.TrialID, &t.RunID, &t.Seq, &bindingJSON,
		&status, &t.Error, &t.Score, &windowScoresJSON,
		&perfJSON, &createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan trial: %w", err)
	}

	t.Status = domain.TrialStatus(status)
	t.CreatedAt = createdAt.UTC()

	if err := json.Unmarshal(bindingJSON, &t.Binding); err != nil {
		return nil, fmt.Errorf("unmarshal binding: %w", err)
	}
	if len(windowScoresJSON) > 0 {
		if err := json.Unmarshal(windowScoresJSON, &t.WindowScores); err != nil {
			return nil, fmt.Errorf("unmarshal window scores: %w", err)
		}
	}
	if len(perfJSON) > 0 {
		var perf domain.PerformanceRecord
		if err := json.Unmarshal(perfJSON, &perf); err != nil {
			return nil, fmt.Errorf("unmarshal performance: %w", err)
		}
		t.Performance = &perf
	}

	return &t, nil
}
