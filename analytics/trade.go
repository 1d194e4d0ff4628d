package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Direction is the side of a trade.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// ParseDirection accepts LONG/SHORT in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LONG", "BUY":
		return Long, nil
	case "SHORT", "SELL":
		return Short, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// Status reports whether a trade has a realized P/L.
type Status int

const (
	Open Status = iota
	Closed
)

func (s Status) String() string {
	if s == Closed {
		return "closed"
	}
	return "open"
}

// Trade is a single journal entry as consumed by Compute.
//
// PnL is nil while the trade is still open. A zero EntryTime means the entry
// timestamp is missing; CloseTime is nil until the trade is closed.
type Trade struct {
	ID           string     `json:"id"`
	Instrument   string     `json:"instrument"`
	Direction    Direction  `json:"direction"`
	EntryPrice   float64    `json:"entryPrice"`
	StopLoss     float64    `json:"stopLoss"`
	TakeProfit   float64    `json:"takeProfit"`
	PnL          *float64   `json:"pnl,omitempty"`
	EntryTime    time.Time  `json:"entryTime"`
	CloseTime    *time.Time `json:"closeTime,omitempty"`
	EquityBefore float64    `json:"equityBefore"`
}

// Status returns Closed when the trade carries a finite realized P/L.
func (t Trade) Status() Status {
	if _, ok := t.realizedPnL(); ok {
		return Closed
	}
	return Open
}

func (t Trade) realizedPnL() (float64, bool) {
	if t.PnL == nil || math.IsNaN(*t.PnL) || math.IsInf(*t.PnL, 0) {
		return 0, false
	}
	return *t.PnL, true
}

func (t Trade) closeTime() (time.Time, bool) {
	if t.CloseTime == nil || t.CloseTime.IsZero() {
		return time.Time{}, false
	}
	return *t.CloseTime, true
}

var epoch = time.Unix(0, 0)

// hasEntryTime reports whether EntryTime is usable. Zero and pre-1970 values
// are treated as missing.
func (t Trade) hasEntryTime() bool {
	return !t.EntryTime.IsZero() && !t.EntryTime.Before(epoch)
}

// EffectiveTime is the ordering key: close time when present, otherwise the
// entry time. The zero time means the trade carries no usable timestamp.
func (t Trade) EffectiveTime() time.Time {
	if ct, ok := t.closeTime(); ok {
		return ct
	}
	if !t.hasEntryTime() {
		return time.Time{}
	}
	return t.EntryTime
}

// HoldingPeriod is the time between entry and close. Open trades are measured
// up to now. ok is false when the entry time is missing or the close precedes
// the entry.
func (t Trade) HoldingPeriod(now time.Time) (d time.Duration, ok bool) {
	if !t.hasEntryTime() {
		return 0, false
	}
	end := now
	if ct, has := t.closeTime(); has {
		end = ct
	}
	d = end.Sub(t.EntryTime)
	if d < 0 {
		return 0, false
	}
	return d, true
}

// RiskReward is the planned reward to risk multiple implied by the entry,
// stop-loss and take-profit prices. It is 0 when the stop sits on the entry.
func (t Trade) RiskReward() float64 {
	risk := math.Abs(t.EntryPrice - t.StopLoss)
	reward := math.Abs(t.TakeProfit - t.EntryPrice)
	if risk == 0 || t.StopLoss == 0 || t.TakeProfit == 0 {
		return 0
	}
	return reward / risk
}

// Float returns a pointer to v, for building trades with a realized P/L.
func Float(v float64) *float64 { return &v }

// Time returns a pointer to t, for building trades with a close time.
func Time(t time.Time) *time.Time { return &t }
