// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	dataset TEXT NOT NULL,
	instruments TEXT NOT NULL,
	start_time DATETIME NOT NULL,
	end_time DATETIME NOT NULL,
	fast_period INTEGER NOT NULL,
	slow_period INTEGER NOT NULL,
	allocation TEXT NOT NULL,
	initial_cash TEXT NOT NULL,
	final_cash TEXT NOT NULL,
	final_value TEXT NOT NULL,
	bars INTEGER NOT NULL,
	trades INTEGER NOT NULL,
	buys INTEGER NOT NULL,
	sells INTEGER NOT NULL,
	csv_path TEXT NOT NULL,
	org_path TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	time DATETIME NOT NULL,
	instrument TEXT NOT NULL,
	operation TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	strategy TEXT NOT NULL,
	price TEXT NOT NULL,
	portfolio_value TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_trades_instrument ON trades(run_id, instrument);
`
