package reporting

import (
	"fmt"
	"strings"

	"stock-signal-lab/internal/dates"
	"stock-signal-lab/internal/domain"
)

// RenderRunsCSV renders run records as CSV string.
func RenderRunsCSV(runs []domain.RunRecord) string {
	var sb strings.Builder

	sb.WriteString("run_id,strategy_name,start_date,end_date,total_return,cagr,max_drawdown,")
	sb.WriteString("win_rate,avg_win_pct,avg_loss_pct,profit_factor,final_value,total_trades,")
	sb.WriteString("stop_loss_count,time_exit_count\n")

	for _, r := range runs {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.2f,%.2f,%d,%d,%d\n",
			r.RunID,
			r.StrategyName,
			dates.Format(r.StartDate),
			dates.Format(r.EndDate),
			r.TotalReturn,
			r.CAGR,
			r.MaxDrawdown,
			r.WinRate,
			r.AvgWinPct,
			r.AvgLossPct,
			r.ProfitFactor,
			r.FinalValue,
			r.TotalTrades,
			r.StopLossCount,
			r.TimeExitCount,
		))
	}

	return sb.String()
}

// RenderTradesCSV renders closed positions as CSV string.
func RenderTradesCSV(trades []*domain.ClosedPosition) string {
	var sb strings.Builder

	sb.WriteString("trade_id,ticker,entry_date,exit_date,entry_price,exit_price,shares,")
	sb.WriteString("cost_basis,proceeds,pnl,pnl_pct,holding_days,exit_reason,score\n")

	for _, t := range trades {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%.4f,%.4f,%d,%.2f,%.2f,%.2f,%.6f,%d,%s,%d\n",
			t.TradeID,
			t.Ticker,
			dates.Format(t.EntryDate),
			dates.Format(t.ExitDate),
			t.EntryPrice,
			t.ExitPrice,
			t.Shares,
			t.CostBasis,
			t.Proceeds,
			t.PnL,
			t.PnLPct,
			t.HoldingDays,
			t.ExitReason,
			t.Score,
		))
	}

	return sb.String()
}
