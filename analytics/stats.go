package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Ratio is a quotient that may be unbounded. Infinite is set when the
// denominator is zero and the numerator is positive; Value is then 0.
type Ratio struct {
	Value    float64
	Infinite bool
}

// infinityMarker is how an unbounded Ratio travels in JSON.
const infinityMarker = "Infinity"

func (r Ratio) String() string {
	if r.Infinite {
		return "∞"
	}
	return strconv.FormatFloat(r.Value, 'f', 2, 64)
}

// Float64 returns the ratio with +Inf for the unbounded case.
func (r Ratio) Float64() float64 {
	if r.Infinite {
		return math.Inf(1)
	}
	return r.Value
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.Infinite {
		return json.Marshal(infinityMarker)
	}
	return json.Marshal(r.Value)
}

func (r *Ratio) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != infinityMarker {
			return fmt.Errorf("analytics: invalid ratio %q", s)
		}
		*r = Ratio{Infinite: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = Ratio{Value: v}
	return nil
}

// Statistics holds the scalar part of a MetricsReport. Every field resolves
// to a finite number; zero denominators resolve to 0 except ProfitFactor,
// which uses the Ratio marker.
type Statistics struct {
	TotalTrades     int `json:"totalTrades"`
	OpenTrades      int `json:"openTrades"`
	WinningTrades   int `json:"winningTrades"`
	LosingTrades    int `json:"losingTrades"`
	BreakevenTrades int `json:"breakevenTrades"`
	LongTrades      int `json:"longTrades"`
	ShortTrades     int `json:"shortTrades"`

	WinRate      float64 `json:"winRate"`
	LongWinRate  float64 `json:"longWinRate"`
	ShortWinRate float64 `json:"shortWinRate"`

	TotalPnL      float64 `json:"totalPnl"`
	GrossProfit   float64 `json:"grossProfit"`
	GrossLoss     float64 `json:"grossLoss"`
	ReturnPercent float64 `json:"returnPercent"`

	AverageWin          float64 `json:"averageWin"`
	AverageLoss         float64 `json:"averageLoss"`
	AverageTrade        float64 `json:"averageTrade"`
	LargestWin          float64 `json:"largestWin"`
	LargestLoss         float64 `json:"largestLoss"`
	AverageRiskReward   float64 `json:"averageRiskReward"`
	AverageHoldingHours float64 `json:"averageHoldingHours"`

	ProfitFactor   Ratio   `json:"profitFactor"`
	Expectancy     float64 `json:"expectancy"`
	KellyFraction  float64 `json:"kellyFraction"`
	SharpeRatio    float64 `json:"sharpeRatio"`
	SortinoRatio   float64 `json:"sortinoRatio"`
	CalmarRatio    float64 `json:"calmarRatio"`
	RecoveryFactor float64 `json:"recoveryFactor"`

	Volatility        float64 `json:"volatility"`
	DownsideDeviation float64 `json:"downsideDeviation"`
	ValueAtRisk95     float64 `json:"valueAtRisk95"`
	ConditionalVaR95  float64 `json:"conditionalVaR95"`
	MaxDrawdown       float64 `json:"maxDrawdown"`
	CurrentDrawdown   float64 `json:"currentDrawdown"`

	LongestWinStreak  int `json:"longestWinStreak"`
	LongestLossStreak int `json:"longestLossStreak"`
	CurrentStreak     int `json:"currentStreak"` // >0 wins, <0 losses
}

// computeStatistics aggregates the closed records. maxDD is the equity
// curve's maximum drawdown in percent.
func computeStatistics(recs []record, balance, maxDD float64) Statistics {
	var s Statistics
	returns := returnsOf(recs)
	n := len(returns)

	s.TotalTrades = n
	s.OpenTrades = len(recs) - n
	s.MaxDrawdown = maxDD

	var longWins, shortWins int
	var rrSum float64
	var rrCount int
	var holdSum float64
	var holdCount int

	for _, r := range recs {
		if r.riskReward > 0 {
			rrSum += r.riskReward
			rrCount++
		}
		if r.hasHolding {
			holdSum += r.holding.Hours()
			holdCount++
		}
		if !r.realized {
			continue
		}
		switch r.direction {
		case Long:
			s.LongTrades++
			if r.pnl > 0 {
				longWins++
			}
		case Short:
			s.ShortTrades++
			if r.pnl > 0 {
				shortWins++
			}
		}
	}
	s.LongWinRate = percent(longWins, s.LongTrades)
	s.ShortWinRate = percent(shortWins, s.ShortTrades)
	if rrCount > 0 {
		s.AverageRiskReward = rrSum / float64(rrCount)
	}
	if holdCount > 0 {
		s.AverageHoldingHours = holdSum / float64(holdCount)
	}

	for _, p := range returns {
		s.TotalPnL += p
		switch {
		case p > 0:
			s.WinningTrades++
			s.GrossProfit += p
			s.LargestWin = math.Max(s.LargestWin, p)
		case p < 0:
			s.LosingTrades++
			s.GrossLoss += -p
			s.LargestLoss = math.Min(s.LargestLoss, p)
		default:
			s.BreakevenTrades++
		}
	}

	s.WinRate = percent(s.WinningTrades, n)
	if balance != 0 {
		s.ReturnPercent = s.TotalPnL / balance * 100
	}
	if s.WinningTrades > 0 {
		s.AverageWin = s.GrossProfit / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AverageLoss = s.GrossLoss / float64(s.LosingTrades)
	}

	switch {
	case s.GrossLoss > 0:
		s.ProfitFactor = Ratio{Value: s.GrossProfit / s.GrossLoss}
	case s.GrossProfit > 0:
		s.ProfitFactor = Ratio{Infinite: true}
	}

	wr := s.WinRate / 100
	s.Expectancy = wr*s.AverageWin - (1-wr)*s.AverageLoss
	if s.AverageWin > 0 {
		s.KellyFraction = s.Expectancy / s.AverageWin
	}

	if n > 0 {
		mean := s.TotalPnL / float64(n)
		s.AverageTrade = mean
		s.Volatility = stdDev(returns, mean)
		s.DownsideDeviation = downsideDeviation(returns)
		if s.Volatility > 0 {
			s.SharpeRatio = mean / s.Volatility
		}
		if s.DownsideDeviation > 0 {
			s.SortinoRatio = mean / s.DownsideDeviation
		}
	}

	if maxDD > 0 && balance != 0 {
		s.CalmarRatio = (s.TotalPnL / balance) / (maxDD / 100)
		s.RecoveryFactor = s.TotalPnL / (maxDD / 100 * balance)
	}

	s.ValueAtRisk95, s.ConditionalVaR95 = valueAtRisk(returns, 0.05)
	s.LongestWinStreak, s.LongestLossStreak, s.CurrentStreak = streaks(returns)

	return s
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// stdDev is the population standard deviation.
func stdDev(xs []float64, mean float64) float64 {
	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}
	return math.Sqrt(sq / float64(len(xs)))
}

// downsideDeviation is the root mean square of the negative returns taken over
// all returns, non-negative ones contributing zero.
func downsideDeviation(xs []float64) float64 {
	var sq float64
	for _, x := range xs {
		if x < 0 {
			sq += x * x
		}
	}
	return math.Sqrt(sq / float64(len(xs)))
}

// valueAtRisk returns the historical VaR at the given tail and the mean of the
// returns strictly below the VaR index.
func valueAtRisk(returns []float64, tail float64) (vaR, cvaR float64) {
	if len(returns) == 0 {
		return 0, 0
	}
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	idx := int(math.Floor(float64(len(sorted)) * tail))
	vaR = sorted[idx]
	if idx == 0 {
		return vaR, 0
	}
	var sum float64
	for _, x := range sorted[:idx] {
		sum += x
	}
	return vaR, sum / float64(idx)
}

// streaks scans returns in order. A zero return ends both streaks.
func streaks(returns []float64) (longestWin, longestLoss, current int) {
	var wins, losses int
	for _, r := range returns {
		switch {
		case r > 0:
			wins++
			losses = 0
		case r < 0:
			losses++
			wins = 0
		default:
			wins, losses = 0, 0
		}
		longestWin = max(longestWin, wins)
		longestLoss = max(longestLoss, losses)
	}
	switch {
	case wins > 0:
		current = wins
	case losses > 0:
		current = -losses
	}
	return longestWin, longestLoss, current
}
