package reporting

import (
	"time"

	"alpha-search-lab/internal/domain"
)

// Report represents one search-run report.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Run         RunSummary

	// Leaderboard holds the top trials, best first.
	Leaderboard []TrialRow

	// Best describes the winning trial in detail.
	Best *BestTrialSection

	// Failures summarizes failed trials grouped by error message.
	Failures []FailureRow
}

// RunSummary describes the run header.
type RunSummary struct {
	RunID      string
	Strategy   string
	Symbol     string
	Sampler    string
	Seed       int64
	Budget     int
	Status     string
	TrialsDone int
	StartedAt  time.Time
	FinishedAt *time.Time
}

// TrialRow is one leaderboard entry.
type TrialRow struct {
	Rank        int
	Seq         int64
	TrialID     string
	Score       float64
	TotalReturn float64
	MaxDrawdown float64
	SharpeRatio float64
	TradeCount  int
	WinRate     float64
	Binding     string // canonical binding key
}

// BestTrialSection details the winning trial.
type BestTrialSection struct {
	TrialID      string
	Seq          int64
	Score        float64
	Binding      domain.ParameterBinding
	WindowScores []WindowScoreRow
	Performance  *domain.PerformanceRecord
}

// WindowScoreRow is one per-window score of the best trial.
type WindowScoreRow struct {
	WindowID string
	Score    float64
}

// FailureRow groups failed trials sharing an error message.
type FailureRow struct {
	Error string
	Count int
}
