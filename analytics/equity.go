package analytics

// EquityPoint is the account equity after one trade.
type EquityPoint struct {
	Date     string  `json:"date"` // YYYY-MM-DD, empty when the trade has no timestamp
	Equity   float64 `json:"equity"`
	Drawdown float64 `json:"drawdown"` // percent below the running peak
}

// buildEquityCurve walks the records in order, seeding the peak with the
// account balance. Open trades add nothing to equity but still get a point.
func buildEquityCurve(recs []record, balance float64) (curve []EquityPoint, maxDD, currentDD float64) {
	curve = make([]EquityPoint, 0, len(recs))
	peak, equity := balance, balance

	for _, r := range recs {
		if r.realized {
			equity += r.pnl
		}
		if equity > peak {
			peak = equity
		}

		dd := 0.0
		if peak > 0 {
			dd = (peak - equity) / peak * 100
		}
		if dd > maxDD {
			maxDD = dd
		}

		p := EquityPoint{Equity: equity, Drawdown: dd}
		if r.hasTime {
			p.Date = r.at.Format("2006-01-02")
		}
		curve = append(curve, p)
	}

	if n := len(curve); n > 0 {
		currentDD = curve[n-1].Drawdown
	}
	return curve, maxDD, currentDD
}
