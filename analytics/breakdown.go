package analytics

import (
	"sort"
	"time"
)

// MonthlyPerformance is P/L per calendar month, keyed YYYY-MM.
type MonthlyPerformance struct {
	Month  string  `json:"month"`
	PnL    float64 `json:"pnl"`
	Trades int     `json:"trades"`
}

// HourlyPerformance is P/L per hour of entry.
type HourlyPerformance struct {
	Hour   int     `json:"hour"`
	PnL    float64 `json:"pnl"`
	Trades int     `json:"trades"`
}

// WeekdayPerformance is P/L per day of entry.
type WeekdayPerformance struct {
	Day    string  `json:"day"`
	PnL    float64 `json:"pnl"`
	Trades int     `json:"trades"`
}

// InstrumentPerformance is P/L and win rate per symbol.
type InstrumentPerformance struct {
	Instrument string  `json:"instrument"`
	PnL        float64 `json:"pnl"`
	Trades     int     `json:"trades"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"winRate"`
}

var weekdays = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// weekdayIndex maps a weekday onto the Monday-first order of weekdays.
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func monthlyPerformance(recs []record) []MonthlyPerformance {
	byMonth := map[string]*MonthlyPerformance{}
	for _, r := range recs {
		if !r.realized || !r.hasTime {
			continue
		}
		key := r.at.Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &MonthlyPerformance{Month: key}
			byMonth[key] = m
		}
		m.PnL += r.pnl
		m.Trades++
	}

	out := make([]MonthlyPerformance, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// timeOfDayPerformance always returns 24 entries, hour 0 first.
func timeOfDayPerformance(recs []record) []HourlyPerformance {
	out := make([]HourlyPerformance, 24)
	for h := range out {
		out[h].Hour = h
	}
	for _, r := range recs {
		if !r.realized || !r.hasEntry {
			continue
		}
		h := r.entry.Hour()
		out[h].PnL += r.pnl
		out[h].Trades++
	}
	return out
}

// dayOfWeekPerformance always returns 7 entries, Monday first.
func dayOfWeekPerformance(recs []record) []WeekdayPerformance {
	out := make([]WeekdayPerformance, len(weekdays))
	for i, d := range weekdays {
		out[i].Day = d.String()
	}
	for _, r := range recs {
		if !r.realized || !r.hasEntry {
			continue
		}
		i := weekdayIndex(r.entry.Weekday())
		out[i].PnL += r.pnl
		out[i].Trades++
	}
	return out
}

// instrumentPerformance is sorted by P/L descending, then by symbol.
func instrumentPerformance(recs []record) []InstrumentPerformance {
	bySymbol := map[string]*InstrumentPerformance{}
	for _, r := range recs {
		if !r.realized {
			continue
		}
		ip, ok := bySymbol[r.instrument]
		if !ok {
			ip = &InstrumentPerformance{Instrument: r.instrument}
			bySymbol[r.instrument] = ip
		}
		ip.PnL += r.pnl
		ip.Trades++
		if r.pnl > 0 {
			ip.Wins++
		}
	}

	out := make([]InstrumentPerformance, 0, len(bySymbol))
	for _, ip := range bySymbol {
		ip.WinRate = percent(ip.Wins, ip.Trades)
		out = append(out, *ip)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PnL != out[j].PnL {
			return out[i].PnL > out[j].PnL
		}
		return out[i].Instrument < out[j].Instrument
	})
	return out
}
