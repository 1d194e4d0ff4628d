package analytics

import (
	"sort"
	"time"
)

// record is the engine's private view of a trade. Later stages only ever see
// records, never the caller's Trade values.
type record struct {
	instrument string
	direction  Direction

	pnl      float64
	realized bool

	at      time.Time // close time, else entry time
	hasTime bool

	entry    time.Time
	hasEntry bool

	holding    time.Duration
	hasHolding bool

	riskReward float64
}

// normalize derives one record per trade and orders them chronologically.
// Trades sharing a timestamp, and trades with no timestamp at all, keep their
// input order; the latter sort first.
func normalize(trades []Trade, o options) []record {
	recs := make([]record, 0, len(trades))
	now := o.now()

	for _, t := range trades {
		r := record{
			instrument: t.Instrument,
			direction:  t.Direction,
			riskReward: t.RiskReward(),
		}
		r.pnl, r.realized = t.realizedPnL()

		if at := t.EffectiveTime(); !at.IsZero() {
			r.at, r.hasTime = o.in(at), true
		}
		if t.hasEntryTime() {
			r.entry, r.hasEntry = o.in(t.EntryTime), true
		}
		r.holding, r.hasHolding = t.HoldingPeriod(now)

		recs = append(recs, r)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].at.Before(recs[j].at)
	})
	return recs
}

// returnsOf collects the realized P/L of closed records in record order.
func returnsOf(recs []record) []float64 {
	out := make([]float64, 0, len(recs))
	for _, r := range recs {
		if r.realized {
			out = append(out, r.pnl)
		}
	}
	return out
}
