package decision

import (
	"context"
	"errors"
	"sort"

	"alpha-search-lab/internal/domain"
	"alpha-search-lab/internal/split"
	"alpha-search-lab/internal/storage"
)

// ErrNoTrials is returned when a run has no stored trials to gate on.
var ErrNoTrials = errors.New("run has no stored trials")

// Builder constructs decision Inputs from stored runs and trials.
type Builder struct {
	runStore   storage.RunStore
	trialStore storage.TrialStore
}

// NewBuilder creates a new decision input builder.
func NewBuilder(runStore storage.RunStore, trialStore storage.TrialStore) *Builder {
	return &Builder{runStore: runStore, trialStore: trialStore}
}

// Build creates the Input for one run. The series is the data the run
// searched on; it feeds the sufficiency check. A nil series skips that
// check (reported as sufficient).
func (b *Builder) Build(ctx context.Context, runID string, series *domain.PriceSeries, splitCfg split.Config) (*Input, error) {
	run, err := b.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}

	trials, err := b.trialStore.ListByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(trials) == 0 {
		return nil, ErrNoTrials
	}

	input := &Input{
		RunID:          run.RunID,
		Strategy:       run.Strategy,
		Symbol:         run.Symbol,
		TrialsDone:     len(trials),
		SufficientData: true,
	}
	for _, t := range trials {
		if t.Status == domain.TrialStatusFailed {
			input.FailedTrials++
		}
	}

	best, err := b.trialStore.BestByRun(ctx, runID, 1)
	if err != nil {
		return nil, err
	}
	if len(best) > 0 {
		t := best[0]
		input.HasBest = true
		input.BestScore = t.Score
		input.WindowScores = sortedWindowScores(t.WindowScores)
		if t.Performance != nil {
			input.TotalReturn = t.Performance.TotalReturn
			input.MaxDrawdown = t.Performance.MaxDrawdown
			input.TradeCount = t.Performance.TradeCount
			input.WinRate = t.Performance.WinRate
		}
	}

	if series != nil {
		sufficiency := split.CheckSufficiency(series, splitCfg)
		input.SufficientData = sufficiency.AllPass
	}

	return input, nil
}

// sortedWindowScores flattens the per-window map in window-ID order so
// the gate's output is deterministic.
func sortedWindowScores(scores map[string]float64) []float64 {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]float64, 0, len(ids))
	for _, id := range ids {
		out = append(out, scores[id])
	}
	return out
}
