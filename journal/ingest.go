package journal

import (
	"fmt"
	"strings"
	"time"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradestats/analytics"
	"github.com/rustyeddy/tradestats/pkg/id"
)

// TradeRow is a trade as it arrives from a file or form: every field a
// string, nothing trusted yet.
type TradeRow struct {
	ID           string
	Instrument   string `validate:"required"`
	Direction    string `validate:"required,oneof=LONG SHORT long short"`
	EntryPrice   string `validate:"required"`
	StopLoss     string
	TakeProfit   string
	RealizedPL   string
	EntryTime    string
	CloseTime    string
	EquityBefore string
}

// Rejection records why an input row did not become a trade.
type Rejection struct {
	Line   int
	Reason string
}

func (r Rejection) String() string {
	return fmt.Sprintf("line %d: %s", r.Line, r.Reason)
}

var validate = goValidator.New()

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseRow validates row and converts it into a Trade. An empty RealizedPL or
// CloseTime leaves the trade open; an empty ID is replaced with a ULID stamped
// at the entry time.
func ParseRow(row TradeRow) (analytics.Trade, error) {
	row.Instrument = strings.TrimSpace(row.Instrument)
	row.Direction = strings.TrimSpace(row.Direction)
	if err := validate.Struct(row); err != nil {
		return analytics.Trade{}, fmt.Errorf("validate row: %w", err)
	}

	dir, err := analytics.ParseDirection(row.Direction)
	if err != nil {
		return analytics.Trade{}, err
	}

	t := analytics.Trade{
		ID:         strings.TrimSpace(row.ID),
		Instrument: row.Instrument,
		Direction:  dir,
	}

	if t.EntryPrice, err = parsePrice("entry_price", row.EntryPrice, true); err != nil {
		return analytics.Trade{}, err
	}
	if t.StopLoss, err = parsePrice("stop_loss", row.StopLoss, false); err != nil {
		return analytics.Trade{}, err
	}
	if t.TakeProfit, err = parsePrice("take_profit", row.TakeProfit, false); err != nil {
		return analytics.Trade{}, err
	}

	if s := strings.TrimSpace(row.RealizedPL); s != "" {
		pl, err := decimal.NewFromString(s)
		if err != nil {
			return analytics.Trade{}, fmt.Errorf("parse realized_pl %q: %w", s, err)
		}
		t.PnL = analytics.Float(pl.InexactFloat64())
	}

	if s := strings.TrimSpace(row.EquityBefore); s != "" {
		eq, err := decimal.NewFromString(s)
		if err != nil {
			return analytics.Trade{}, fmt.Errorf("parse equity_before %q: %w", s, err)
		}
		t.EquityBefore = eq.InexactFloat64()
	}

	if s := strings.TrimSpace(row.EntryTime); s != "" {
		if t.EntryTime, err = parseTime(s); err != nil {
			return analytics.Trade{}, fmt.Errorf("parse entry_time: %w", err)
		}
	}
	if s := strings.TrimSpace(row.CloseTime); s != "" {
		ct, err := parseTime(s)
		if err != nil {
			return analytics.Trade{}, fmt.Errorf("parse close_time: %w", err)
		}
		t.CloseTime = &ct
	}

	if t.ID == "" {
		t.ID = id.At(t.EffectiveTime())
	}
	return t, nil
}

// parsePrice parses a decimal price. An optional price that is empty or
// exactly zero is absent; anything else must be positive.
func parsePrice(field, s string, required bool) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if required {
			return 0, fmt.Errorf("%s is required", field)
		}
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	if !required && d.IsZero() {
		return 0, nil
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("%s must be positive, got %s", field, d)
	}
	return d.InexactFloat64(), nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
