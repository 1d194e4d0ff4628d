// Package journal stores and loads the trade logs the analytics engine reads.
// Trades live in SQLite or CSV; raw rows pass through ParseRow before they
// become analytics.Trade values.
package journal

import (
	"errors"

	"github.com/rustyeddy/tradestats/analytics"
)

// ErrTradeNotFound is returned by lookups for an unknown trade ID.
var ErrTradeNotFound = errors.New("journal: trade not found")

type Journal interface {
	RecordTrade(analytics.Trade) error
	Close() error
}
