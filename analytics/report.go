// Package analytics turns a trade log and a reference account balance into a
// MetricsReport: equity curve, drawdown, risk-adjusted statistics, calendar
// and instrument breakdowns, and a P/L histogram.
//
// Compute is a pure function of its inputs. It never mutates the trades it is
// given and keeps no state between calls, so callers that want memoization or
// periodic recomputation own that policy (see internal/refresh).
package analytics

import (
	"errors"
	"math"
	"time"
)

// ErrInvalidBalance is returned when the account balance is NaN or infinite.
var ErrInvalidBalance = errors.New("analytics: account balance must be finite")

// MetricsReport is a snapshot valid only for the exact trades and balance it
// was computed from.
type MetricsReport struct {
	AccountBalance float64 `json:"accountBalance"`
	FinalEquity    float64 `json:"finalEquity"`

	Statistics

	EquityCurve           []EquityPoint           `json:"equityCurve"`
	MonthlyPerformance    []MonthlyPerformance    `json:"monthlyPerformance"`
	TimeOfDayPerformance  []HourlyPerformance     `json:"timeOfDayPerformance"`
	DayOfWeekPerformance  []WeekdayPerformance    `json:"dayOfWeekPerformance"`
	InstrumentPerformance []InstrumentPerformance `json:"instrumentPerformance"`
	PnLDistribution       []DistributionBucket    `json:"pnlDistribution"`
}

type options struct {
	now func() time.Time
	loc *time.Location
}

func (o options) in(t time.Time) time.Time {
	if o.loc == nil {
		return t
	}
	return t.In(o.loc)
}

// Option tunes Compute.
type Option func(*options)

// WithNow sets the clock used to measure the holding period of open trades.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLocation converts timestamps to loc before bucketing by day, month,
// hour and weekday. Without it each timestamp keeps its own location.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

// Compute builds a MetricsReport. A nil or empty trade list yields a report of
// neutral values with zero-filled hour and weekday breakdowns.
func Compute(trades []Trade, accountBalance float64, opts ...Option) (MetricsReport, error) {
	if math.IsNaN(accountBalance) || math.IsInf(accountBalance, 0) {
		return MetricsReport{}, ErrInvalidBalance
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	recs := normalize(trades, o)
	curve, maxDD, currentDD := buildEquityCurve(recs, accountBalance)

	stats := computeStatistics(recs, accountBalance, maxDD)
	stats.CurrentDrawdown = currentDD

	rep := MetricsReport{
		AccountBalance:        accountBalance,
		FinalEquity:           accountBalance,
		Statistics:            stats,
		EquityCurve:           curve,
		MonthlyPerformance:    monthlyPerformance(recs),
		TimeOfDayPerformance:  timeOfDayPerformance(recs),
		DayOfWeekPerformance:  dayOfWeekPerformance(recs),
		InstrumentPerformance: instrumentPerformance(recs),
		PnLDistribution:       pnlDistribution(recs),
	}
	if n := len(curve); n > 0 {
		rep.FinalEquity = curve[n-1].Equity
	}
	return rep, nil
}
