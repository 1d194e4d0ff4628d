package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/tradestats/analytics"
)

// GetTrade returns a single trade by ID.
func (j *SQLite) GetTrade(tradeID string) (analytics.Trade, error) {
	row := j.db.QueryRow(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE trade_id = ?`, tradeID)

	t, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return analytics.Trade{}, fmt.Errorf("trade %q: %w", tradeID, ErrTradeNotFound)
		}
		return analytics.Trade{}, err
	}
	return t, nil
}

// ListTrades returns every trade, open ones included, ordered by close time
// falling back to entry time. Trades with neither come first.
func (j *SQLite) ListTrades(ctx context.Context) ([]analytics.Trade, error) {
	return j.query(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		ORDER BY COALESCE(close_time, entry_time) ASC, trade_id ASC`)
}

// ListTradesClosedBetween returns trades whose close_time is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]analytics.Trade, error) {
	return j.query(context.Background(), `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE close_time >= ? AND close_time < ?
		ORDER BY close_time ASC, trade_id ASC`, start.UTC(), end.UTC())
}

func (j *SQLite) query(ctx context.Context, q string, args ...any) ([]analytics.Trade, error) {
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var out []analytics.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
