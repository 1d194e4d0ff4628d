package journal

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradestats/analytics"
)

// FormatTradeOrg renders a Trade as an Org-mode block suitable for pasting into a journal.
// Structured facts go in a PROPERTIES drawer; Thesis/Execution/Review are left for notes.
func FormatTradeOrg(t analytics.Trade) string {
	heading := fmt.Sprintf("** Trade: %s %s (%s)", t.Instrument, t.Direction, shortID(t.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %s\n", t.ID))
	b.WriteString(fmt.Sprintf(":ID: %s\n", t.ID))
	b.WriteString(fmt.Sprintf(":INSTRUMENT: %s\n", t.Instrument))
	b.WriteString(fmt.Sprintf(":DIRECTION: %s\n", t.Direction))
	b.WriteString(fmt.Sprintf(":STATUS: %s\n", t.Status()))
	b.WriteString(fmt.Sprintf(":ENTRY_PRICE: %.5f\n", t.EntryPrice))
	b.WriteString(fmt.Sprintf(":STOP_LOSS: %.5f\n", t.StopLoss))
	b.WriteString(fmt.Sprintf(":TAKE_PROFIT: %.5f\n", t.TakeProfit))
	if rr := t.RiskReward(); rr > 0 {
		b.WriteString(fmt.Sprintf(":RISK_REWARD: %.2f\n", rr))
	}
	b.WriteString(fmt.Sprintf(":ENTRY_TIME: %s\n", orgTime(t.EntryTime)))
	if t.CloseTime != nil {
		b.WriteString(fmt.Sprintf(":CLOSE_TIME: %s\n", orgTime(*t.CloseTime)))
	}
	if t.PnL != nil {
		b.WriteString(fmt.Sprintf(":REALIZED_PL: %s\n", money(*t.PnL)))
	}
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []analytics.Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}

// Use RFC3339 for copy/paste friendliness.
func orgTime(t time.Time) string {
	if t.IsZero() {
		return "(unknown)"
	}
	return t.UTC().Format(time.RFC3339)
}

func money(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}

// ReportMeta is the context printed around a report in its Org heading.
type ReportMeta struct {
	AccountID string
	Currency  string
	Source    string
	Generated time.Time
	Notes     []string
}

type reportView struct {
	Meta ReportMeta
	analytics.MetricsReport
}

var reportOrgFuncs = template.FuncMap{
	"money": money,
	"pct":   func(x float64) string { return decimal.NewFromFloat(x).StringFixed(2) },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var reportOrgTemplate = template.Must(template.New("report").Funcs(reportOrgFuncs).Parse(ReportOrgTemplate))

// FormatReportOrg renders report as an Org-mode section.
func FormatReportOrg(report analytics.MetricsReport, meta ReportMeta) (string, error) {
	buf := new(bytes.Buffer)
	if err := reportOrgTemplate.Execute(buf, reportView{Meta: meta, MetricsReport: report}); err != nil {
		return "", fmt.Errorf("render report org: %w", err)
	}
	return buf.String(), nil
}

const ReportOrgTemplate = `* PERFORMANCE: {{if .Meta.AccountID}}{{.Meta.AccountID}}{{else}}(account?){{end}}
:PROPERTIES:
:ACCOUNT:     {{if .Meta.AccountID}}{{.Meta.AccountID}}{{else}}(account?){{end}}
:CURRENCY:    {{if .Meta.Currency}}{{.Meta.Currency}}{{else}}(currency?){{end}}
:SOURCE:      {{if .Meta.Source}}{{.Meta.Source}}{{else}}(source?){{end}}
:START_BAL:   {{money .AccountBalance}}
:END_BAL:     {{money .FinalEquity}}
:NET_PL:      {{money .TotalPnL}}
:RETURN_PCT:  {{pct .ReturnPercent}}
:MAX_DD_PCT:  {{pct .MaxDrawdown}}
:TRADES:      {{.TotalTrades}}
:OPEN:        {{.OpenTrades}}
:WINS:        {{.WinningTrades}}
:LOSSES:      {{.LosingTrades}}
:WIN_RATE:    {{pct .WinRate}}
:PROFIT_FAC:  {{.ProfitFactor}}
:CREATED:     [{{(orTime .Meta.Generated).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Net P/L:          *{{money .TotalPnL}}*
- Return:           *{{pct .ReturnPercent}}%*
- Max Drawdown:     *{{pct .MaxDrawdown}}%*
- Current Drawdown: *{{pct .CurrentDrawdown}}%*
- Win Rate:         *{{pct .WinRate}}%*
- Profit Factor:    *{{.ProfitFactor}}*
- Expectancy:       *{{money .Expectancy}}*

** Risk
| Metric         | Value |
|----------------+-------|
| Sharpe         | {{printf "%.2f" .SharpeRatio}} |
| Sortino        | {{printf "%.2f" .SortinoRatio}} |
| Calmar         | {{printf "%.2f" .CalmarRatio}} |
| Recovery       | {{printf "%.2f" .RecoveryFactor}} |
| Kelly          | {{printf "%.4f" .KellyFraction}} |
| VaR 95         | {{money .ValueAtRisk95}} |
| CVaR 95        | {{money .ConditionalVaR95}} |
| Avg R:R        | {{printf "%.2f" .AverageRiskReward}} |

** Trade Distribution
| Range | Count |
|-------+-------|
{{- range .PnLDistribution }}
| {{.Range}} | {{.Count}} |
{{- end }}

{{- if .InstrumentPerformance }}

** Instruments
| Instrument | Trades | P/L | Win Rate |
|------------+--------+-----+----------|
{{- range .InstrumentPerformance }}
| {{.Instrument}} | {{.Trades}} | {{money .PnL}} | {{pct .WinRate}} |
{{- end }}
{{- end }}

{{- if .MonthlyPerformance }}

** Months
| Month | Trades | P/L |
|-------+--------+-----|
{{- range .MonthlyPerformance }}
| {{.Month}} | {{.Trades}} | {{money .PnL}} |
{{- end }}
{{- end }}

{{- if .Meta.Notes }}

** Observations
{{- range .Meta.Notes }}
- {{.}}
{{- end }}
{{- end }}
`
