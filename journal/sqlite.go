package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite journals trades and run summaries to a SQLite database.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Record(t TradeRecord) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, seq, time, instrument, operation, quantity, strategy, price, portfolio_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.Seq, t.Time.UTC(), t.Instrument, t.Operation(),
		t.Quantity, string(t.Strategy), t.Price, t.PortfolioValue,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// RecordRun stores the summary of a run, replacing an earlier summary with
// the same id.
func (j *SQLite) RecordRun(ctx context.Context, r BacktestRun) error {
	if r.RunID == "" {
		return fmt.Errorf("%w: run id is empty", ErrWrite)
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
		(run_id, created, dataset, instruments, start_time, end_time,
		 fast_period, slow_period, allocation,
		 initial_cash, final_cash, final_value,
		 bars, trades, buys, sells, csv_path, org_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created.UTC(), r.Dataset, strings.Join(r.Instruments, ","),
		r.Start.UTC(), r.End.UTC(),
		r.FastPeriod, r.SlowPeriod, r.AllocationFraction,
		r.InitialCash, r.FinalCash, r.FinalValue,
		r.Bars, r.Trades, r.Buys, r.Sells, r.CSVPath, r.OrgPath,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
