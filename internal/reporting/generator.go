// Package reporting renders search-run results as Markdown and CSV.
package reporting

import (
	"context"
	"sort"
	"time"

	"alpha-search-lab/internal/domain"
	"alpha-search-lab/internal/storage"
)

// defaultLeaderboardSize bounds the leaderboard when no size is given.
const defaultLeaderboardSize = 20

// Generator produces reports from stored runs and trials.
type Generator struct {
	runStore        storage.RunStore
	trialStore      storage.TrialStore
	leaderboardSize int
	now             func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(runStore storage.RunStore, trialStore storage.TrialStore) *Generator {
	return &Generator{
		runStore:        runStore,
		trialStore:      trialStore,
		leaderboardSize: defaultLeaderboardSize,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithLeaderboardSize bounds the number of leaderboard rows.
func (g *Generator) WithLeaderboardSize(n int) *Generator {
	if n > 0 {
		g.leaderboardSize = n
	}
	return g
}

// Generate produces a complete report for one run.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	run, err := g.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}

	best, err := g.trialStore.BestByRun(ctx, runID, g.leaderboardSize)
	if err != nil {
		return nil, err
	}

	all, err := g.trialStore.ListByRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt: g.now(),
		Run: RunSummary{
			RunID:      run.RunID,
			Strategy:   run.Strategy,
			Symbol:     run.Symbol,
			Sampler:    run.Sampler,
			Seed:       run.Seed,
			Budget:     run.Budget,
			Status:     string(run.Status),
			TrialsDone: run.TrialsDone,
			StartedAt:  run.StartedAt,
			FinishedAt: run.FinishedAt,
		},
		Leaderboard: buildLeaderboard(best),
		Failures:    buildFailures(all),
	}
	if len(best) > 0 {
		report.Best = buildBestSection(best[0])
	}
	return report, nil
}

func buildLeaderboard(trials []*domain.TrialResult) []TrialRow {
	rows := make([]TrialRow, 0, len(trials))
	for i, t := range trials {
		row := TrialRow{
			Rank:    i + 1,
			Seq:     t.Seq,
			TrialID: t.TrialID,
			Score:   t.Score,
			Binding: t.Binding.Key(),
		}
		if t.Performance != nil {
			row.TotalReturn = t.Performance.TotalReturn
			row.MaxDrawdown = t.Performance.MaxDrawdown
			row.SharpeRatio = t.Performance.SharpeRatio
			row.TradeCount = t.Performance.TradeCount
			row.WinRate = t.Performance.WinRate
		}
		rows = append(rows, row)
	}
	return rows
}

func buildBestSection(t *domain.TrialResult) *BestTrialSection {
	section := &BestTrialSection{
		TrialID:     t.TrialID,
		Seq:         t.Seq,
		Score:       t.Score,
		Binding:     t.Binding,
		Performance: t.Performance,
	}
	for id, score := range t.WindowScores {
		section.WindowScores = append(section.WindowScores, WindowScoreRow{WindowID: id, Score: score})
	}
	sort.Slice(section.WindowScores, func(i, j int) bool {
		return section.WindowScores[i].WindowID < section.WindowScores[j].WindowID
	})
	return section
}

func buildFailures(trials []*domain.TrialResult) []FailureRow {
	counts := make(map[string]int)
	for _, t := range trials {
		if t.Status == domain.TrialStatusFailed {
			counts[t.Error]++
		}
	}

	rows := make([]FailureRow, 0, len(counts))
	for msg, n := range counts {
		rows = append(rows, FailureRow{Error: msg, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Error < rows[j].Error
	})
	return rows
}
