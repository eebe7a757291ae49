package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"stock-signal-lab/internal/dates"
	"stock-signal-lab/internal/domain"
)

// RenderMarkdown renders the cross-run report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Simulation Runs Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Runs: %d | Profitable: %d\n\n", r.RunCount, r.ProfitableRuns))

	sb.WriteString("## Aggregates\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Mean Return | %.2f%% |\n", r.MeanReturn*100))
	sb.WriteString(fmt.Sprintf("| Median Return | %.2f%% |\n", r.MedianReturn*100))
	sb.WriteString(fmt.Sprintf("| Mean Max Drawdown | %.2f%% |\n", r.MeanDrawdown*100))
	sb.WriteString(fmt.Sprintf("| Mean Win Rate | %.2f%% |\n", r.MeanWinRate*100))
	sb.WriteString("\n")

	sb.WriteString("## Runs\n\n")
	if len(r.Runs) > 0 {
		sb.WriteString("| Strategy | Start | End | Return | CAGR | MaxDD | Trades | WinRate | Final$ |\n")
		sb.WriteString("|----------|-------|-----|--------|------|-------|--------|---------|--------|\n")
		for _, run := range r.Runs {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %+.1f%% | %+.1f%% | %.1f%% | %d | %.1f%% | %.0f |\n",
				run.StrategyName,
				dates.Format(run.StartDate), dates.Format(run.EndDate),
				run.TotalReturn*100, run.CAGR*100, run.MaxDrawdown*100,
				run.TotalTrades, run.WinRate*100, run.FinalValue))
		}
	} else {
		sb.WriteString("No runs recorded.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// RenderResultMarkdown renders one finished simulation as a Markdown report.
func RenderResultMarkdown(result *domain.SimulationResult) string {
	var sb strings.Builder
	s := result.Summary

	sb.WriteString(fmt.Sprintf("# Simulation: %s\n\n", result.Config.Name))
	sb.WriteString(fmt.Sprintf("Window: %s to %s\n\n",
		dates.Format(result.StartDate), dates.Format(result.EndDate)))

	sb.WriteString("## Performance\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Initial Capital | $%.2f |\n", result.Config.InitialCapital))
	sb.WriteString(fmt.Sprintf("| Final Value | $%.2f |\n", s.FinalValue))
	sb.WriteString(fmt.Sprintf("| Total Return | %+.2f%% |\n", s.TotalReturn*100))
	sb.WriteString(fmt.Sprintf("| CAGR | %+.2f%% |\n", s.CAGR*100))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %.2f%% |\n", s.MaxDrawdown*100))
	sb.WriteString("\n")

	sb.WriteString("## Trades\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", s.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Winners / Losers | %d / %d |\n", s.WinningTrades, s.LosingTrades))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.1f%% |\n", s.WinRate*100))
	sb.WriteString(fmt.Sprintf("| Avg Win | %+.1f%% |\n", s.AvgWinPct*100))
	sb.WriteString(fmt.Sprintf("| Avg Loss | %+.1f%% |\n", s.AvgLossPct*100))
	sb.WriteString(fmt.Sprintf("| Profit Factor | %.2f |\n", s.ProfitFactorCapped()))
	sb.WriteString("\n")

	sb.WriteString("## Exit Reasons\n\n")
	if len(s.ExitReasonCounts) > 0 {
		sb.WriteString("| Reason | Count |\n")
		sb.WriteString("|--------|-------|\n")
		reasons := make([]string, 0, len(s.ExitReasonCounts))
		for reason := range s.ExitReasonCounts {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", reason, s.ExitReasonCounts[reason]))
		}
	} else {
		sb.WriteString("No trades closed.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Tax Treatment\n\n")
	sb.WriteString(fmt.Sprintf("Long-term trades (>365 days): %d of %d (%.1f%%)\n\n",
		s.LongTermTrades, s.TotalTrades, s.LongTermPct*100))
	if savings := TaxSavingsEstimate(result.ClosedPositions); savings > 0 {
		sb.WriteString(fmt.Sprintf("Estimated tax savings from long-term treatment: $%.2f (20%% rate differential)\n\n", savings))
	}

	sb.WriteString("## Signal Audit\n\n")
	sb.WriteString("| Outcome | Count |\n")
	sb.WriteString("|---------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Considered | %d |\n", result.SignalsConsidered))
	sb.WriteString(fmt.Sprintf("| Skipped: duplicate ticker | %d |\n", result.SkippedDuplicate))
	sb.WriteString(fmt.Sprintf("| Skipped: score filter | %d |\n", result.SkippedScoreFilter))
	sb.WriteString(fmt.Sprintf("| Skipped: no entry price | %d |\n", result.SkippedNoPrice))
	sb.WriteString(fmt.Sprintf("| Skipped: insufficient capital | %d |\n", result.SkippedCapital))
	sb.WriteString("\n")

	return sb.String()
}
