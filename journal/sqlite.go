package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/tradestats/analytics"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// RecordTrade inserts t, or replaces the stored row when the ID exists, so a
// trade can be recorded at entry and again when it closes.
func (j *SQLite) RecordTrade(t analytics.Trade) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, instrument, direction, entry_price, stop_loss, take_profit, realized_pl, entry_time, close_time, equity_before)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(trade_id) DO UPDATE SET
			instrument = excluded.instrument,
			direction = excluded.direction,
			entry_price = excluded.entry_price,
			stop_loss = excluded.stop_loss,
			take_profit = excluded.take_profit,
			realized_pl = excluded.realized_pl,
			entry_time = excluded.entry_time,
			close_time = excluded.close_time,
			equity_before = excluded.equity_before`,
		t.ID, t.Instrument, string(t.Direction), t.EntryPrice,
		t.StopLoss, t.TakeProfit, nullFloat(t.PnL), nullTime(&t.EntryTime),
		nullTime(t.CloseTime), t.EquityBefore,
	)
	if err != nil {
		return fmt.Errorf("record trade %s: %w", t.ID, err)
	}
	return nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

const tradeColumns = `trade_id, instrument, direction, entry_price, stop_loss, take_profit, realized_pl, entry_time, close_time, equity_before`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (analytics.Trade, error) {
	var (
		t         analytics.Trade
		direction string
		pnl       sql.NullFloat64
		entry     sql.NullTime
		closed    sql.NullTime
	)
	err := s.Scan(
		&t.ID,
		&t.Instrument,
		&direction,
		&t.EntryPrice,
		&t.StopLoss,
		&t.TakeProfit,
		&pnl,
		&entry,
		&closed,
		&t.EquityBefore,
	)
	if err != nil {
		return analytics.Trade{}, err
	}

	t.Direction = analytics.Direction(direction)
	if pnl.Valid {
		t.PnL = analytics.Float(pnl.Float64)
	}
	if entry.Valid {
		t.EntryTime = entry.Time.UTC()
	}
	if closed.Valid {
		t.CloseTime = analytics.Time(closed.Time.UTC())
	}
	return t, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// nullTime stores times in UTC so the text encoding orders correctly in
// range queries.
func nullTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC()
}
