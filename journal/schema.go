package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	strategy TEXT NOT NULL,
	side TEXT NOT NULL,
	price REAL NOT NULL,
	amount REAL NOT NULL,
	order_id TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_time ON trades(time);
`

const PostgresSchema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	time TIMESTAMPTZ NOT NULL,
	symbol TEXT NOT NULL,
	strategy TEXT NOT NULL,
	side TEXT NOT NULL,
	price DOUBLE PRECISION NOT NULL,
	amount DOUBLE PRECISION NOT NULL,
	order_id TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_time ON trades(time);
`

const tradeColumns = `trade_id, time, symbol, strategy, side, price, amount, order_id`
