// Package decision evaluates whether a finished search run is worth
// acting on: a GO/NO-GO gate over the best trial's out-of-sample
// results.
package decision

// Decision represents the final GO/NO-GO result.
type Decision string

const (
	DecisionGO   Decision = "GO"
	DecisionNOGO Decision = "NO-GO"
)

// Input contains numeric metrics for decision evaluation.
type Input struct {
	// Best trial metrics, aggregated across test windows.
	BestScore   float64
	TotalReturn float64
	MaxDrawdown float64
	TradeCount  int
	WinRate     float64

	// Per-window scores of the best trial.
	WindowScores []float64

	// Run health.
	TrialsDone   int
	FailedTrials int
	HasBest      bool // false when no trial succeeded

	// Data sufficiency.
	SufficientData bool

	// Context for the report.
	RunID    string
	Strategy string
	Symbol   string
}

// CriterionResult represents pass/fail for one criterion.
type CriterionResult struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// Result contains the final decision with checklist.
type Result struct {
	Decision   Decision
	GOCriteria []CriterionResult // criteria that must all pass
	NOGOChecks []CriterionResult // triggers that must all stay silent
}
