package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the leaderboard as a CSV string.
func RenderCSV(rows []TrialRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("rank,seq,trial_id,score,total_return,max_drawdown,sharpe_ratio,trade_count,win_rate,binding\n")

	// Rows
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%d,%d,%s,%.6f,%.6f,%.6f,%.6f,%d,%.6f,%s\n",
			row.Rank,
			row.Seq,
			row.TrialID,
			row.Score,
			row.TotalReturn,
			row.MaxDrawdown,
			row.SharpeRatio,
			row.TradeCount,
			row.WinRate,
			row.Binding,
		))
	}

	return sb.String()
}
