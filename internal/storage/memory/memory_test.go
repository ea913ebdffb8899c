package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"alpha-search-lab/internal/domain"
	"alpha-search-lab/internal/storage"
)

func testRun(runID string) *domain.SearchRun {
	return &domain.SearchRun{
		RunID:     runID,
		Strategy:  "sma_cross",
		Symbol:    "TEST",
		Seed:      42,
		Sampler:   "random",
		Budget:    100,
		Status:    domain.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
}

func testTrial(trialID, runID string, seq int64, score float64) *domain.TrialResult {
	return &domain.TrialResult{
		TrialID: trialID,
		RunID:   runID,
		Seq:     seq,
		Binding: domain.ParameterBinding{"fast": int64(5), "slow": int64(20 + seq)},
		Status:  domain.TrialStatusOK,
		Score:   score,
		WindowScores: map[string]float64{
			"wf-1": score,
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestRunStore_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore()

	run := testRun("run-1")
	if err := store.Insert(ctx, run); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := store.GetByID(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Strategy != run.Strategy || got.Seed != run.Seed {
		t.Errorf("retrieved run differs: %+v", got)
	}

	if err := store.Insert(ctx, testRun("run-1")); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Insert(ctx, &domain.SearchRun{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty run_id, got %v", err)
	}
}

func TestRunStore_UpdateProgress(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore()

	run := testRun("run-1")
	if err := store.Insert(ctx, run); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	run.Status = domain.RunStatusConverged
	run.TrialsDone = 42
	run.BestTrialID = "trial-7"
	run.BestScore = 3.14
	if err := store.UpdateProgress(ctx, run); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	got, err := store.GetByID(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.RunStatusConverged || got.TrialsDone != 42 || got.BestTrialID != "trial-7" {
		t.Errorf("update not applied: %+v", got)
	}

	if err := store.UpdateProgress(ctx, testRun("missing")); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRunStore_ListOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore()

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		run := testRun(fmt.Sprintf("run-%d", i))
		run.StartedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.Insert(ctx, run); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	runs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].StartedAt.After(runs[i-1].StartedAt) {
			t.Errorf("runs not ordered by started_at DESC")
		}
	}
}

func TestRunStore_GetIsolatesStoredState(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore()

	if err := store.Insert(ctx, testRun("run-1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, _ := store.GetByID(ctx, "run-1")
	got.TrialsDone = 999

	again, _ := store.GetByID(ctx, "run-1")
	if again.TrialsDone == 999 {
		t.Errorf("mutating a retrieved run leaked into the store")
	}
}

func TestTrialStore_AppendOnly(t *testing.T) {
	ctx := context.Background()
	store := NewTrialStore()

	trial := testTrial("t-1", "run-1", 0, 1.0)
	if err := store.Append(ctx, trial); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// Append-only: same trial_id is rejected, even with new fields.
	dup := testTrial("t-1", "run-1", 0, 99.0)
	if err := store.Append(ctx, dup); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}

	if err := store.Append(ctx, &domain.TrialResult{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty trial_id, got %v", err)
	}
}

func TestTrialStore_ListByRunOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewTrialStore()

	// Append out of order; ListByRun must return seq ASC.
	for _, seq := range []int64{2, 0, 1} {
		trial := testTrial(fmt.Sprintf("t-%d", seq), "run-1", seq, float64(seq))
		if err := store.Append(ctx, trial); err != nil {
			t.Fatalf("Append seq %d: %v", seq, err)
		}
	}
	if err := store.Append(ctx, testTrial("other", "run-2", 0, 1.0)); err != nil {
		t.Fatalf("Append other run: %v", err)
	}

	trials, err := store.ListByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListByRun: %v", err)
	}
	if len(trials) != 3 {
		t.Fatalf("expected 3 trials, got %d", len(trials))
	}
	for i, trial := range trials {
		if trial.Seq != int64(i) {
			t.Errorf("position %d holds seq %d", i, trial.Seq)
		}
	}
}

func TestTrialStore_BestByRun(t *testing.T) {
	ctx := context.Background()
	store := NewTrialStore()

	scores := []float64{1.0, 3.0, 2.0, 3.0}
	for seq, score := range scores {
		trial := testTrial(fmt.Sprintf("t-%d", seq), "run-1", int64(seq), score)
		if err := store.Append(ctx, trial); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	failed := testTrial("t-failed", "run-1", 10, 100.0)
	failed.Status = domain.TrialStatusFailed
	if err := store.Append(ctx, failed); err != nil {
		t.Fatalf("Append failed trial: %v", err)
	}

	best, err := store.BestByRun(ctx, "run-1", 3)
	if err != nil {
		t.Fatalf("BestByRun: %v", err)
	}
	if len(best) != 3 {
		t.Fatalf("expected 3 trials, got %d", len(best))
	}

	// Score DESC, seq ASC on the 3.0 tie; failed trials excluded.
	if best[0].Seq != 1 || best[1].Seq != 3 || best[2].Seq != 2 {
		t.Errorf("unexpected order: %d, %d, %d", best[0].Seq, best[1].Seq, best[2].Seq)
	}
	for _, trial := range best {
		if trial.Status != domain.TrialStatusOK {
			t.Errorf("failed trial leaked into BestByRun")
		}
	}
}

func TestTrialStore_CloneIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewTrialStore()

	trial := testTrial("t-1", "run-1", 0, 1.0)
	if err := store.Append(ctx, trial); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// Mutating the appended value must not reach the store.
	trial.WindowScores["wf-1"] = -100
	trial.Binding["fast"] = int64(999)

	got, err := store.ListByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListByRun: %v", err)
	}
	if got[0].WindowScores["wf-1"] == -100 {
		t.Errorf("window scores shared with caller")
	}
	if got[0].Binding.Int("fast") == 999 {
		t.Errorf("binding shared with caller")
	}
}

func TestTrialStore_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	store := NewTrialStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(seq int64) {
			defer wg.Done()
			trial := testTrial(fmt.Sprintf("t-%d", seq), "run-1", seq, float64(seq))
			if err := store.Append(ctx, trial); err != nil {
				t.Errorf("Append seq %d: %v", seq, err)
			}
		}(int64(i))
	}
	wg.Wait()

	trials, err := store.ListByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListByRun: %v", err)
	}
	if len(trials) != 50 {
		t.Errorf("expected 50 trials, got %d", len(trials))
	}
}

func TestBarSeriesStore_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewBarSeriesStore()

	bars := []domain.Bar{
		{TimestampMs: 1000, Close: 1},
		{TimestampMs: 2000, Close: 2},
		{TimestampMs: 3000, Close: 3},
	}
	if err := store.InsertBulk(ctx, "TEST", "1d", bars); err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}

	series, err := store.GetBySymbol(ctx, "TEST", "1d")
	if err != nil {
		t.Fatalf("GetBySymbol: %v", err)
	}
	if len(series.Bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(series.Bars))
	}
	if err := series.Validate(); err != nil {
		t.Errorf("retrieved series invalid: %v", err)
	}

	if _, err := store.GetBySymbol(ctx, "TEST", "1h"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown interval, got %v", err)
	}
}

func TestBarSeriesStore_DuplicateTimestamps(t *testing.T) {
	ctx := context.Background()
	store := NewBarSeriesStore()

	if err := store.InsertBulk(ctx, "TEST", "1d", []domain.Bar{{TimestampMs: 1000}}); err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}

	// Duplicate against existing data fails the whole batch.
	err := store.InsertBulk(ctx, "TEST", "1d", []domain.Bar{
		{TimestampMs: 2000},
		{TimestampMs: 1000},
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	series, err := store.GetBySymbol(ctx, "TEST", "1d")
	if err != nil {
		t.Fatalf("GetBySymbol: %v", err)
	}
	if len(series.Bars) != 1 {
		t.Errorf("failed batch must not be partially applied, got %d bars", len(series.Bars))
	}

	// Intra-batch duplicate fails too.
	err = store.InsertBulk(ctx, "TEST", "1d", []domain.Bar{
		{TimestampMs: 5000},
		{TimestampMs: 5000},
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey for intra-batch duplicate, got %v", err)
	}
}

func TestBarSeriesStore_MergeSortsByTimestamp(t *testing.T) {
	ctx := context.Background()
	store := NewBarSeriesStore()

	if err := store.InsertBulk(ctx, "TEST", "1d", []domain.Bar{{TimestampMs: 3000}}); err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}
	if err := store.InsertBulk(ctx, "TEST", "1d", []domain.Bar{{TimestampMs: 1000}, {TimestampMs: 2000}}); err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}

	series, err := store.GetBySymbol(ctx, "TEST", "1d")
	if err != nil {
		t.Fatalf("GetBySymbol: %v", err)
	}
	for i := 1; i < len(series.Bars); i++ {
		if series.Bars[i].TimestampMs <= series.Bars[i-1].TimestampMs {
			t.Errorf("bars not sorted after merge")
		}
	}
}

func TestBarSeriesStore_GetByTimeRange(t *testing.T) {
	ctx := context.Background()
	store := NewBarSeriesStore()

	bars := []domain.Bar{
		{TimestampMs: 1000},
		{TimestampMs: 2000},
		{TimestampMs: 3000},
		{TimestampMs: 4000},
	}
	if err := store.InsertBulk(ctx, "TEST", "1d", bars); err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}

	// Range bounds are inclusive on both ends.
	series, err := store.GetByTimeRange(ctx, "TEST", "1d", 2000, 3000)
	if err != nil {
		t.Fatalf("GetByTimeRange: %v", err)
	}
	if len(series.Bars) != 2 {
		t.Errorf("expected 2 bars in [2000,3000], got %d", len(series.Bars))
	}

	if _, err := store.GetByTimeRange(ctx, "TEST", "1d", 9000, 9999); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty range, got %v", err)
	}
}
