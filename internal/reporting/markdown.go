package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Search Run Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Run summary
	sb.WriteString("## Run\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Run ID | %s |\n", r.Run.RunID))
	sb.WriteString(fmt.Sprintf("| Strategy | %s |\n", r.Run.Strategy))
	sb.WriteString(fmt.Sprintf("| Symbol | %s |\n", r.Run.Symbol))
	sb.WriteString(fmt.Sprintf("| Sampler | %s |\n", r.Run.Sampler))
	sb.WriteString(fmt.Sprintf("| Seed | %d |\n", r.Run.Seed))
	sb.WriteString(fmt.Sprintf("| Budget | %d |\n", r.Run.Budget))
	sb.WriteString(fmt.Sprintf("| Status | %s |\n", r.Run.Status))
	sb.WriteString(fmt.Sprintf("| Trials | %d |\n", r.Run.TrialsDone))
	sb.WriteString(fmt.Sprintf("| Started | %s |\n", r.Run.StartedAt.Format(time.RFC3339)))
	if r.Run.FinishedAt != nil {
		sb.WriteString(fmt.Sprintf("| Finished | %s |\n", r.Run.FinishedAt.Format(time.RFC3339)))
	}
	sb.WriteString("\n")

	// Leaderboard
	sb.WriteString("## Leaderboard\n\n")
	if len(r.Leaderboard) > 0 {
		sb.WriteString("| Rank | Seq | Score | Return | MaxDD | Sharpe | Trades | WinRate | Binding |\n")
		sb.WriteString("|------|-----|-------|--------|-------|--------|--------|---------|--------|\n")
		for _, row := range r.Leaderboard {
			// Binding keys use "|" as a separator, which breaks table cells.
			binding := strings.ReplaceAll(row.Binding, "|", " ")
			sb.WriteString(fmt.Sprintf("| %d | %d | %.6f | %.4f | %.4f | %.4f | %d | %.4f | %s |\n",
				row.Rank, row.Seq, row.Score,
				row.TotalReturn, row.MaxDrawdown, row.SharpeRatio,
				row.TradeCount, row.WinRate, binding))
		}
	} else {
		sb.WriteString("No successful trials.\n")
	}
	sb.WriteString("\n")

	// Best trial
	sb.WriteString("## Best Trial\n\n")
	if r.Best != nil {
		sb.WriteString(fmt.Sprintf("Trial %s (seq %d), score %.6f\n\n", r.Best.TrialID, r.Best.Seq, r.Best.Score))

		sb.WriteString("### Binding\n\n")
		sb.WriteString("| Parameter | Value |\n")
		sb.WriteString("|-----------|-------|\n")
		names := make([]string, 0, len(r.Best.Binding))
		for name := range r.Best.Binding {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sb.WriteString(fmt.Sprintf("| %s | %v |\n", name, r.Best.Binding[name]))
		}
		sb.WriteString("\n")

		if len(r.Best.WindowScores) > 0 {
			sb.WriteString("### Window Scores\n\n")
			sb.WriteString("| Window | Score |\n")
			sb.WriteString("|--------|-------|\n")
			for _, ws := range r.Best.WindowScores {
				sb.WriteString(fmt.Sprintf("| %s | %.6f |\n", ws.WindowID, ws.Score))
			}
			sb.WriteString("\n")
		}

		if r.Best.Performance != nil {
			p := r.Best.Performance
			sb.WriteString("### Performance\n\n")
			sb.WriteString("| Metric | Value |\n")
			sb.WriteString("|--------|-------|\n")
			sb.WriteString(fmt.Sprintf("| Total Return | %.4f |\n", p.TotalReturn))
			sb.WriteString(fmt.Sprintf("| Max Drawdown | %.4f |\n", p.MaxDrawdown))
			sb.WriteString(fmt.Sprintf("| Sharpe Ratio | %.4f |\n", p.SharpeRatio))
			sb.WriteString(fmt.Sprintf("| Trades | %d |\n", p.TradeCount))
			sb.WriteString(fmt.Sprintf("| Win Rate | %.4f |\n", p.WinRate))
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("No successful trials.\n\n")
	}

	// Failures
	sb.WriteString("## Failed Trials\n\n")
	if len(r.Failures) > 0 {
		sb.WriteString("| Count | Error |\n")
		sb.WriteString("|-------|-------|\n")
		for _, f := range r.Failures {
			sb.WriteString(fmt.Sprintf("| %d | %s |\n", f.Count, f.Error))
		}
	} else {
		sb.WriteString("No failed trials.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
