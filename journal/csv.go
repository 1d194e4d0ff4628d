package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradestats/analytics"
)

// CSVHeader is the column order written by CSVJournal. ReadCSV matches
// columns by name, so other orders read back too.
var CSVHeader = []string{
	"trade_id", "instrument", "direction", "entry_price", "stop_loss",
	"take_profit", "realized_pl", "entry_time", "close_time", "equity_before",
}

type CSVJournal struct {
	trades *csv.Writer
	tf     *os.File
}

func NewCSV(tradesPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, fmt.Errorf("create trades csv: %w", err)
	}

	tw := csv.NewWriter(tf)
	if err := tw.Write(CSVHeader); err != nil {
		tf.Close()
		return nil, err
	}
	tw.Flush()
	if err := tw.Error(); err != nil {
		tf.Close()
		return nil, err
	}

	return &CSVJournal{trades: tw, tf: tf}, nil
}

func (j *CSVJournal) RecordTrade(t analytics.Trade) error {
	pl := ""
	if t.PnL != nil {
		pl = f(*t.PnL)
	}
	entry := ""
	if !t.EntryTime.IsZero() {
		entry = t.EntryTime.Format(time.RFC3339)
	}
	closed := ""
	if t.CloseTime != nil && !t.CloseTime.IsZero() {
		closed = t.CloseTime.Format(time.RFC3339)
	}

	if err := j.trades.Write([]string{
		t.ID,
		t.Instrument,
		string(t.Direction),
		f(t.EntryPrice),
		optional(t.StopLoss),
		optional(t.TakeProfit),
		pl,
		entry,
		closed,
		f(t.EquityBefore),
	}); err != nil {
		return fmt.Errorf("write trade %s: %w", t.ID, err)
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	return j.tf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

// optional leaves unset prices empty so they read back as absent.
func optional(x float64) string {
	if x == 0 {
		return ""
	}
	return f(x)
}

// ReadCSV loads trades from CSV with a header row. A row that fails to parse
// is reported as a Rejection and skipped; only an unreadable header or an I/O
// failure returns an error.
func ReadCSV(r io.Reader) ([]analytics.Trade, []Rejection, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range []string{"instrument", "direction", "entry_price"} {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("csv header missing column %q", name)
		}
	}

	var (
		trades   []analytics.Trade
		rejected []Rejection
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				rejected = append(rejected, Rejection{Line: perr.Line, Reason: perr.Err.Error()})
				continue
			}
			return trades, rejected, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}

		t, err := ParseRow(TradeRow{
			ID:           get("trade_id"),
			Instrument:   get("instrument"),
			Direction:    get("direction"),
			EntryPrice:   get("entry_price"),
			StopLoss:     get("stop_loss"),
			TakeProfit:   get("take_profit"),
			RealizedPL:   get("realized_pl"),
			EntryTime:    get("entry_time"),
			CloseTime:    get("close_time"),
			EquityBefore: get("equity_before"),
		})
		if err != nil {
			rejected = append(rejected, Rejection{Line: line, Reason: err.Error()})
			continue
		}
		trades = append(trades, t)
	}
	return trades, rejected, nil
}

// ReadCSVFile is ReadCSV over a named file.
func ReadCSVFile(path string) ([]analytics.Trade, []Rejection, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open trades csv: %w", err)
	}
	defer fh.Close()
	return ReadCSV(fh)
}
