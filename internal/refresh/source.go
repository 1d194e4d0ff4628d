package refresh

import (
	"context"

	"github.com/rustyeddy/tradestats/analytics"
	"github.com/rustyeddy/tradestats/journal"
	"github.com/rustyeddy/tradestats/pkg/logger"
)

// CSVSource rereads a CSV trade file on every refresh. Rejected rows are
// logged and skipped.
type CSVSource struct {
	Path string
	Log  *logger.Logger
}

func (s CSVSource) ListTrades(ctx context.Context) ([]analytics.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trades, rejected, err := journal.ReadCSVFile(s.Path)
	if err != nil {
		return nil, err
	}
	if s.Log != nil {
		for _, rej := range rejected {
			s.Log.WarnContext(ctx, "rejected trade row",
				logger.StringField("file", s.Path),
				logger.IntField("line", rej.Line),
				logger.StringField("reason", rej.Reason),
			)
		}
	}
	return trades, nil
}

// SourceFunc adapts a function to TradeSource.
type SourceFunc func(ctx context.Context) ([]analytics.Trade, error)

func (f SourceFunc) ListTrades(ctx context.Context) ([]analytics.Trade, error) {
	return f(ctx)
}

var _ TradeSource = (*journal.SQLite)(nil)
