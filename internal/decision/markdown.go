package decision

import (
	"fmt"
	"strings"
)

// RenderMarkdown renders the gate verdict for one run as Markdown:
// run context, the best trial's out-of-sample numbers, then the
// checklist that produced the decision.
func RenderMarkdown(input Input, result *Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Decision: %s\n\n", result.Decision)
	fmt.Fprintf(&sb, "Run `%s`: strategy `%s` on `%s`, %d trials done, %d failed.\n\n",
		input.RunID, input.Strategy, input.Symbol, input.TrialsDone, input.FailedTrials)

	sb.WriteString("## Best trial\n\n")
	if input.HasBest {
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		fmt.Fprintf(&sb, "| Score | %.6f |\n", input.BestScore)
		fmt.Fprintf(&sb, "| Total return | %.2f%% |\n", input.TotalReturn*100)
		fmt.Fprintf(&sb, "| Max drawdown | %.2f%% |\n", input.MaxDrawdown*100)
		fmt.Fprintf(&sb, "| Trades | %d |\n", input.TradeCount)
		fmt.Fprintf(&sb, "| Win rate | %.2f%% |\n", input.WinRate*100)
		fmt.Fprintf(&sb, "| Window scores | %s |\n", joinScores(input.WindowScores))
		sb.WriteString("\n")
	} else {
		sb.WriteString("No trial succeeded.\n\n")
	}

	sb.WriteString("## Checklist\n\n")
	sb.WriteString("| Check | Threshold | Actual | Result |\n")
	sb.WriteString("|-------|-----------|--------|--------|\n")
	for _, c := range result.GOCriteria {
		verdict := "PASS"
		if !c.Pass {
			verdict = "FAIL"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", c.Name, c.Threshold, c.Actual, verdict)
	}
	for _, c := range result.NOGOChecks {
		verdict := "clear"
		if !c.Pass {
			verdict = "TRIGGERED"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", c.Name, c.Threshold, c.Actual, verdict)
	}
	sb.WriteString("\n")

	if result.Decision == DecisionGO {
		sb.WriteString("Every criterion passed and no trigger fired.\n")
		return sb.String()
	}

	sb.WriteString("Blocked by:\n\n")
	for _, c := range result.GOCriteria {
		if !c.Pass {
			fmt.Fprintf(&sb, "- %s: %s\n", c.Name, c.Actual)
		}
	}
	for _, c := range result.NOGOChecks {
		if !c.Pass {
			fmt.Fprintf(&sb, "- %s: %s\n", c.Name, c.Actual)
		}
	}
	return sb.String()
}

func joinScores(scores []float64) string {
	if len(scores) == 0 {
		return "none"
	}
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = fmt.Sprintf("%.4f", s)
	}
	return strings.Join(parts, ", ")
}
