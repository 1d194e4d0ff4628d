package journal

// Schema is applied on every open. realized_pl and close_time stay NULL while
// a trade is open; entry_time is NULL when the source did not record one.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	instrument TEXT NOT NULL,
	direction TEXT NOT NULL,
	entry_price REAL NOT NULL,
	stop_loss REAL NOT NULL DEFAULT 0,
	take_profit REAL NOT NULL DEFAULT 0,
	realized_pl REAL,
	entry_time DATETIME,
	close_time DATETIME,
	equity_before REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_trades_close_time ON trades(close_time);
`
