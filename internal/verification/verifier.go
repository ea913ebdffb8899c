// Package verification re-runs stored trials and checks that the
// simulator reproduces their recorded scores and performance exactly.
package verification

import (
	"context"
	"fmt"
	"math"

	"alpha-search-lab/internal/domain"
	"alpha-search-lab/internal/objective"
	"alpha-search-lab/internal/simulate"
	"alpha-search-lab/internal/split"
	"alpha-search-lab/internal/storage"
	"alpha-search-lab/internal/strategy"
)

// FloatTolerance is the tolerance for float64 comparisons. The
// simulator is deterministic, so replayed values should match stored
// ones up to serialization round-trips.
const FloatTolerance = 1e-9

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Field    string      // field name
	Expected interface{} // stored value
	Actual   interface{} // replayed value
}

// VerificationResult contains the result of verifying a single trial.
type VerificationResult struct {
	TrialID       string            // verified trial ID
	Seq           int64             // dispatch sequence of the trial
	Match         bool              // true if all fields match
	Divergences   []FieldDivergence // list of divergent fields
	StoredScore   float64           // score from the stored trial
	ReplayedScore float64           // score from the fresh evaluation
}

// VerificationReport contains results for batch verification.
type VerificationReport struct {
	TotalTrials     int                  // total trials verified
	MatchedTrials   int                  // trials that matched exactly
	DivergentTrials int                  // trials with divergences
	Results         []VerificationResult // individual results
}

// Options for creating a Verifier.
type Options struct {
	TrialStore storage.TrialStore

	// Series must be the exact series the run was searched on.
	Series *domain.PriceSeries

	// Strategy names the strategy family recorded on the run header.
	Strategy string

	// Split, Costs, Objective, Aggregation and WindowWeights must
	// mirror the original run configuration.
	Split         split.Config
	Costs         domain.CostModel
	DefaultSize   float64
	Objective     string
	Aggregation   objective.AggregationPolicy
	WindowWeights []float64
}

// Verifier replays stored trials through a fresh simulator.
type Verifier struct {
	trialStore storage.TrialStore
	series     *domain.PriceSeries
	strat      strategy.Strategy
	windows    []domain.ValidationWindow
	sim        *simulate.Simulator
	obj        objective.Objective
	agg        objective.AggregationPolicy
	weights    []float64
}

// New creates a Verifier with the given options.
func New(opts Options) (*Verifier, error) {
	strat, err := strategy.FromName(opts.Strategy)
	if err != nil {
		return nil, fmt.Errorf("resolve strategy: %w", err)
	}
	windows, err := split.Split(opts.Series, opts.Split)
	if err != nil {
		return nil, fmt.Errorf("split series: %w", err)
	}
	obj, err := objective.FromName(opts.Objective)
	if err != nil {
		return nil, fmt.Errorf("resolve objective: %w", err)
	}

	return &Verifier{
		trialStore: opts.TrialStore,
		series:     opts.Series,
		strat:      strat,
		windows:    windows,
		sim: simulate.New(simulate.Options{
			Costs:       opts.Costs,
			DefaultSize: opts.DefaultSize,
		}),
		obj:     obj,
		agg:     opts.Aggregation,
		weights: opts.WindowWeights,
	}, nil
}

// VerifyTrial re-evaluates one stored trial and compares every scored
// field. Failed trials are reported as matching when the fresh
// evaluation also fails.
func (v *Verifier) VerifyTrial(ctx context.Context, trial *domain.TrialResult) *VerificationResult {
	result := &VerificationResult{
		TrialID:     trial.TrialID,
		Seq:         trial.Seq,
		StoredScore: trial.Score,
	}

	score, windowScores, rec, err := v.evaluate(trial.Binding)
	if err != nil {
		if trial.Status == domain.TrialStatusFailed {
			result.Match = true
			result.ReplayedScore = objective.SentinelScore
			return result
		}
		result.Divergences = append(result.Divergences, FieldDivergence{
			Field:    "Status",
			Expected: string(trial.Status),
			Actual:   fmt.Sprintf("evaluation failed: %v", err),
		})
		return result
	}
	result.ReplayedScore = score

	if trial.Status == domain.TrialStatusFailed {
		result.Divergences = append(result.Divergences, FieldDivergence{
			Field:    "Status",
			Expected: string(domain.TrialStatusFailed),
			Actual:   string(domain.TrialStatusOK),
		})
		return result
	}

	if !floatEquals(trial.Score, score) {
		result.Divergences = append(result.Divergences, FieldDivergence{
			Field:    "Score",
			Expected: trial.Score,
			Actual:   score,
		})
	}

	for id, stored := range trial.WindowScores {
		replayed, ok := windowScores[id]
		if !ok {
			result.Divergences = append(result.Divergences, FieldDivergence{
				Field:    "WindowScores." + id,
				Expected: stored,
				Actual:   nil,
			})
			continue
		}
		if !floatEquals(stored, replayed) {
			result.Divergences = append(result.Divergences, FieldDivergence{
				Field:    "WindowScores." + id,
				Expected: stored,
				Actual:   replayed,
			})
		}
	}

	result.Divergences = append(result.Divergences, ComparePerformance(trial.Performance, rec)...)
	result.Match = len(result.Divergences) == 0
	return result
}

// VerifyRun verifies every stored trial of a run.
func (v *Verifier) VerifyRun(ctx context.Context, runID string) (*VerificationReport, error) {
	trials, err := v.trialStore.ListByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("list trials: %w", err)
	}

	report := &VerificationReport{TotalTrials: len(trials)}
	for _, trial := range trials {
		result := v.VerifyTrial(ctx, trial)
		if result.Match {
			report.MatchedTrials++
		} else {
			report.DivergentTrials++
		}
		report.Results = append(report.Results, *result)
	}
	return report, nil
}

// evaluate mirrors the controller's per-trial evaluation path.
func (v *Verifier) evaluate(binding domain.ParameterBinding) (float64, map[string]float64, *domain.PerformanceRecord, error) {
	scores := make([]float64, 0, len(v.windows))
	windowScores := make(map[string]float64, len(v.windows))
	var lastRec *domain.PerformanceRecord

	for _, w := range v.windows {
		slice, err := v.series.Slice(w.TrainStart, w.TestEnd)
		if err != nil {
			return 0, nil, nil, err
		}
		rec, err := v.sim.RunFrom(v.strat, binding, slice, w.TestStart-w.TrainStart)
		if err != nil {
			return 0, nil, nil, err
		}
		score := v.obj.Score(rec)
		scores = append(scores, score)
		windowScores[w.ID] = score
		lastRec = rec
	}

	agg, err := objective.Aggregate(scores, v.weights, v.agg)
	if err != nil {
		return 0, nil, nil, err
	}
	return agg, windowScores, lastRec, nil
}

// ComparePerformance compares two performance records and returns
// divergences. Uses FloatTolerance for float64 comparisons.
func ComparePerformance(stored, replayed *domain.PerformanceRecord) []FieldDivergence {
	var divergences []FieldDivergence

	if stored == nil && replayed == nil {
		return nil
	}
	if stored == nil || replayed == nil {
		return []FieldDivergence{{Field: "Performance", Expected: stored, Actual: replayed}}
	}

	if !floatEquals(stored.TotalReturn, replayed.TotalReturn) {
		divergences = append(divergences, FieldDivergence{
			Field:    "TotalReturn",
			Expected: stored.TotalReturn,
			Actual:   replayed.TotalReturn,
		})
	}

	if !floatEquals(stored.MaxDrawdown, replayed.MaxDrawdown) {
		divergences = append(divergences, FieldDivergence{
			Field:    "MaxDrawdown",
			Expected: stored.MaxDrawdown,
			Actual:   replayed.MaxDrawdown,
		})
	}

	if !floatEquals(stored.SharpeRatio, replayed.SharpeRatio) {
		divergences = append(divergences, FieldDivergence{
			Field:    "SharpeRatio",
			Expected: stored.SharpeRatio,
			Actual:   replayed.SharpeRatio,
		})
	}

	if stored.TradeCount != replayed.TradeCount {
		divergences = append(divergences, FieldDivergence{
			Field:    "TradeCount",
			Expected: stored.TradeCount,
			Actual:   replayed.TradeCount,
		})
	}

	if !floatEquals(stored.WinRate, replayed.WinRate) {
		divergences = append(divergences, FieldDivergence{
			Field:    "WinRate",
			Expected: stored.WinRate,
			Actual:   replayed.WinRate,
		})
	}

	if !floatEquals(stored.FinalEquity, replayed.FinalEquity) {
		divergences = append(divergences, FieldDivergence{
			Field:    "FinalEquity",
			Expected: stored.FinalEquity,
			Actual:   replayed.FinalEquity,
		})
	}

	return divergences
}

// floatEquals compares two float64 values within FloatTolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}
