package domain

import "time"

// TrialStatus classifies the outcome of one trial.
type TrialStatus string

// Trial status constants.
const (
	TrialStatusOK     TrialStatus = "OK"
	TrialStatusFailed TrialStatus = "FAILED"
)

// TrialResult is the immutable record of one parameter-binding
// evaluation. It is created once per trial, appended to the trial
// store, and never mutated or deleted by the engine.
type TrialResult struct {
	TrialID string // deterministic hash, see idhash.ComputeTrialID
	RunID   string // owning search run
	Seq     int64  // dispatch-order sequence number within the run

	Binding ParameterBinding

	Status TrialStatus
	Error  string // populated for failed trials, empty otherwise

	// Score is the objective value aggregated across validation
	// windows. WindowScores keeps the per-window values keyed by
	// window ID for auditability.
	Score        float64
	WindowScores map[string]float64

	// Performance holds the record of the last test window, kept for
	// inspection; per-window records are not retained beyond scoring.
	Performance *PerformanceRecord

	CreatedAt time.Time // wall-clock append time, UTC
}

// RunStatus describes how a search run ended (or that it is running).
type RunStatus string

// Run status constants.
const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusConverged RunStatus = "CONVERGED"
	RunStatusExhausted RunStatus = "EXHAUSTED"
	RunStatusAborted   RunStatus = "ABORTED"
)

// IsTerminal reports whether the status admits no further transitions.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusConverged || s == RunStatusExhausted || s == RunStatusAborted
}

// SearchRun is the durable header row of one parameter-search run.
type SearchRun struct {
	RunID    string
	Strategy string // strategy family name
	Symbol   string // instrument of the price series
	Seed     int64  // sampler seed, recorded for reproducibility
	Sampler  string // sampling policy name
	Budget   int    // max trial count

	Status      RunStatus
	TrialsDone  int
	BestTrialID string
	BestScore   float64

	StartedAt  time.Time
	FinishedAt *time.Time // nil while running
}
