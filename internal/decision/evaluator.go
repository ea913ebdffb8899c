package decision

import "fmt"

// Default thresholds for the gate.
const (
	// MinTrades guards against conclusions drawn from a handful of fills.
	MinTrades = 10

	// MinWinRate is the floor for the best trial's win rate.
	MinWinRate = 0.35

	// MaxDrawdownLimit is the ceiling for the best trial's drawdown.
	MaxDrawdownLimit = 0.5

	// MaxFailedShare is the tolerated fraction of failed trials.
	MaxFailedShare = 0.5
)

// Evaluator evaluates decision criteria.
type Evaluator struct{}

// NewEvaluator creates a new decision evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate produces a Result from an Input.
// GO if ALL criteria pass and NO NO-GO triggers.
// NO-GO if ANY criterion fails or ANY trigger fires.
func (e *Evaluator) Evaluate(input Input) *Result {
	goCriteria := e.evaluateGOCriteria(input)
	nogoChecks := e.evaluateNOGOTriggers(input)

	allGOPass := true
	for _, c := range goCriteria {
		if !c.Pass {
			allGOPass = false
			break
		}
	}

	anyNOGOTriggered := false
	for _, c := range nogoChecks {
		if !c.Pass { // Pass=false means triggered
			anyNOGOTriggered = true
			break
		}
	}

	decision := DecisionGO
	if !allGOPass || anyNOGOTriggered {
		decision = DecisionNOGO
	}

	return &Result{
		Decision:   decision,
		GOCriteria: goCriteria,
		NOGOChecks: nogoChecks,
	}
}

// evaluateGOCriteria evaluates the 5 GO criteria.
func (e *Evaluator) evaluateGOCriteria(input Input) []CriterionResult {
	criteria := make([]CriterionResult, 5)

	// 1. Positive aggregate score
	criteria[0] = CriterionResult{
		Name:      "Positive score",
		Threshold: "> 0",
		Actual:    fmt.Sprintf("%.4f", input.BestScore),
		Pass:      input.HasBest && input.BestScore > 0,
	}

	// 2. Enough trades for the result to mean anything
	criteria[1] = CriterionResult{
		Name:      "Trade count",
		Threshold: fmt.Sprintf(">= %d", MinTrades),
		Actual:    fmt.Sprintf("%d", input.TradeCount),
		Pass:      input.TradeCount >= MinTrades,
	}

	// 3. Win rate floor
	criteria[2] = CriterionResult{
		Name:      "Win rate",
		Threshold: fmt.Sprintf(">= %.2f", MinWinRate),
		Actual:    fmt.Sprintf("%.4f", input.WinRate),
		Pass:      input.WinRate >= MinWinRate,
	}

	// 4. Drawdown ceiling
	criteria[3] = CriterionResult{
		Name:      "Max drawdown",
		Threshold: fmt.Sprintf("<= %.2f", MaxDrawdownLimit),
		Actual:    fmt.Sprintf("%.4f", input.MaxDrawdown),
		Pass:      input.MaxDrawdown <= MaxDrawdownLimit,
	}

	// 5. Consistent across windows: every test window scored positive
	worst, haveWindows := worstWindow(input.WindowScores)
	actual := "no windows"
	if haveWindows {
		actual = fmt.Sprintf("worst window %.4f", worst)
	}
	criteria[4] = CriterionResult{
		Name:      "Window consistency",
		Threshold: "worst window score > 0",
		Actual:    actual,
		Pass:      haveWindows && worst > 0,
	}

	return criteria
}

// evaluateNOGOTriggers evaluates the 3 NO-GO triggers.
// Pass=true means NOT triggered, Pass=false means triggered.
func (e *Evaluator) evaluateNOGOTriggers(input Input) []CriterionResult {
	checks := make([]CriterionResult, 3)

	// 1. No successful trial at all
	checks[0] = CriterionResult{
		Name:      "No successful trials",
		Threshold: "best trial exists",
		Actual:    fmt.Sprintf("has_best=%t", input.HasBest),
		Pass:      input.HasBest,
	}

	// 2. Failed trials dominate the run
	failedShare := 0.0
	if input.TrialsDone > 0 {
		failedShare = float64(input.FailedTrials) / float64(input.TrialsDone)
	}
	triggered := failedShare > MaxFailedShare
	checks[1] = CriterionResult{
		Name:      "Failed trials dominate",
		Threshold: fmt.Sprintf("> %.0f%% failed", MaxFailedShare*100),
		Actual:    fmt.Sprintf("%.0f%%", failedShare*100),
		Pass:      !triggered,
	}

	// 3. Insufficient data
	checks[2] = CriterionResult{
		Name:      "Insufficient data",
		Threshold: "sufficiency checks pass",
		Actual:    fmt.Sprintf("sufficient=%t", input.SufficientData),
		Pass:      input.SufficientData,
	}

	return checks
}

func worstWindow(scores []float64) (float64, bool) {
	if len(scores) == 0 {
		return 0, false
	}
	worst := scores[0]
	for _, s := range scores[1:] {
		if s < worst {
			worst = s
		}
	}
	return worst, true
}
