// Package console prints reports for a terminal.
package console

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/rustyeddy/tradestats/analytics"
)

// PrintReport writes the headline numbers followed by the breakdown tables.
// Empty breakdowns are skipped; hours and days with no trades are omitted.
func PrintReport(w io.Writer, title string, r analytics.MetricsReport) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, " %s\n", title)
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Balance: %.2f\n", r.AccountBalance)
	fmt.Fprintf(w, "End Equity:    %.2f\n", r.FinalEquity)
	fmt.Fprintf(w, "Net P/L:       %.2f\n", r.TotalPnL)
	fmt.Fprintf(w, "Return:        %.2f%%\n", r.ReturnPercent)
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", r.MaxDrawdown)
	fmt.Fprintf(w, "Drawdown Now:  %.2f%%\n", r.CurrentDrawdown)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d (+%d open)\n", r.TotalTrades, r.OpenTrades)
	fmt.Fprintf(w, "Wins:          %d\n", r.WinningTrades)
	fmt.Fprintf(w, "Losses:        %d\n", r.LosingTrades)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", r.WinRate)
	fmt.Fprintf(w, "Long/Short:    %d/%d (%.2f%% / %.2f%%)\n", r.LongTrades, r.ShortTrades, r.LongWinRate, r.ShortWinRate)
	fmt.Fprintf(w, "Avg Win:       %.2f\n", r.AverageWin)
	fmt.Fprintf(w, "Avg Loss:      %.2f\n", r.AverageLoss)
	fmt.Fprintf(w, "Largest Win:   %.2f\n", r.LargestWin)
	fmt.Fprintf(w, "Largest Loss:  %.2f\n", r.LargestLoss)
	fmt.Fprintf(w, "Streaks:       +%d / -%d (now %d)\n", r.LongestWinStreak, r.LongestLossStreak, r.CurrentStreak)
	if r.AverageHoldingHours > 0 {
		fmt.Fprintf(w, "Avg Hold:      %s\n", time.Duration(r.AverageHoldingHours*float64(time.Hour)).Round(time.Minute))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Risk")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Profit Factor: %s\n", r.ProfitFactor)
	fmt.Fprintf(w, "Expectancy:    %.2f\n", r.Expectancy)
	fmt.Fprintf(w, "Kelly:         %.4f\n", r.KellyFraction)
	fmt.Fprintf(w, "Sharpe:        %.2f\n", r.SharpeRatio)
	fmt.Fprintf(w, "Sortino:       %.2f\n", r.SortinoRatio)
	fmt.Fprintf(w, "Calmar:        %.2f\n", r.CalmarRatio)
	fmt.Fprintf(w, "Recovery:      %.2f\n", r.RecoveryFactor)
	fmt.Fprintf(w, "VaR 95:        %.2f\n", r.ValueAtRisk95)
	fmt.Fprintf(w, "CVaR 95:       %.2f\n", r.ConditionalVaR95)
	if r.AverageRiskReward > 0 {
		fmt.Fprintf(w, "Avg R:R:       %.2f\n", r.AverageRiskReward)
	}

	if len(r.MonthlyPerformance) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Months")
		table := tablewriter.NewWriter(w)
		table.Header("Month", "Trades", "P/L")
		for _, m := range r.MonthlyPerformance {
			table.Append(m.Month, fmt.Sprintf("%d", m.Trades), fmt.Sprintf("%.2f", m.PnL))
		}
		table.Render()
	}

	if len(r.InstrumentPerformance) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Instruments")
		table := tablewriter.NewWriter(w)
		table.Header("Instrument", "Trades", "Wins", "Win %", "P/L")
		for _, ip := range r.InstrumentPerformance {
			table.Append(
				ip.Instrument,
				fmt.Sprintf("%d", ip.Trades),
				fmt.Sprintf("%d", ip.Wins),
				fmt.Sprintf("%.1f", ip.WinRate),
				fmt.Sprintf("%.2f", ip.PnL),
			)
		}
		table.Render()
	}

	if r.TotalTrades > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Day of Week")
		table := tablewriter.NewWriter(w)
		table.Header("Day", "Trades", "P/L")
		for _, d := range r.DayOfWeekPerformance {
			if d.Trades == 0 {
				continue
			}
			table.Append(d.Day, fmt.Sprintf("%d", d.Trades), fmt.Sprintf("%.2f", d.PnL))
		}
		table.Render()

		fmt.Fprintln(w)
		fmt.Fprintln(w, "Hour of Entry")
		table = tablewriter.NewWriter(w)
		table.Header("Hour", "Trades", "P/L")
		for _, h := range r.TimeOfDayPerformance {
			if h.Trades == 0 {
				continue
			}
			table.Append(fmt.Sprintf("%02d:00", h.Hour), fmt.Sprintf("%d", h.Trades), fmt.Sprintf("%.2f", h.PnL))
		}
		table.Render()
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "P/L Distribution")
	table := tablewriter.NewWriter(w)
	table.Header("Range", "Count")
	for _, b := range r.PnLDistribution {
		table.Append(b.Range, fmt.Sprintf("%d", b.Count))
	}
	table.Render()
}

// PrintTrades writes one row per trade.
func PrintTrades(w io.Writer, trades []analytics.Trade) {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Instrument", "Side", "Entry", "Entry Time", "Close Time", "P/L")
	for _, t := range trades {
		entry, closed, pl := "-", "-", "open"
		if !t.EntryTime.IsZero() {
			entry = t.EntryTime.UTC().Format("2006-01-02 15:04")
		}
		if t.CloseTime != nil {
			closed = t.CloseTime.UTC().Format("2006-01-02 15:04")
		}
		if t.Status() == analytics.Closed {
			pl = fmt.Sprintf("%.2f", *t.PnL)
		}
		table.Append(t.ID, t.Instrument, string(t.Direction), fmt.Sprintf("%.5f", t.EntryPrice), entry, closed, pl)
	}
	table.Render()
}
