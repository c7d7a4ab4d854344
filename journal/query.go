package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rustyeddy/smatrader/strategies"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("journal: run not found")

const runColumns = `run_id, created, dataset, instruments, start_time, end_time,
	fast_period, slow_period, allocation,
	initial_cash, final_cash, final_value,
	bars, trades, buys, sells, csv_path, org_path`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (BacktestRun, error) {
	var (
		r           BacktestRun
		instruments string
	)
	err := row.Scan(
		&r.RunID, &r.Created, &r.Dataset, &instruments, &r.Start, &r.End,
		&r.FastPeriod, &r.SlowPeriod, &r.AllocationFraction,
		&r.InitialCash, &r.FinalCash, &r.FinalValue,
		&r.Bars, &r.Trades, &r.Buys, &r.Sells, &r.CSVPath, &r.OrgPath,
	)
	if err != nil {
		return BacktestRun{}, err
	}
	r.Created, r.Start, r.End = r.Created.UTC(), r.Start.UTC(), r.End.UTC()
	if instruments != "" {
		r.Instruments = strings.Split(instruments, ",")
	}
	return r, nil
}

// GetRun returns a single run summary by id.
func (j *SQLite) GetRun(ctx context.Context, runID string) (BacktestRun, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)

	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BacktestRun{}, fmt.Errorf("%w: %q", ErrRunNotFound, runID)
		}
		return BacktestRun{}, err
	}
	return r, nil
}

// ListRuns returns run summaries, newest first.
func (j *SQLite) ListRuns(ctx context.Context) ([]BacktestRun, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created DESC, run_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BacktestRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTradesByRunID returns the trades of a run in journal order.
func (j *SQLite) ListTradesByRunID(ctx context.Context, runID string) ([]TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, seq, time, instrument, operation, quantity, strategy, price, portfolio_value
		FROM trades
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var (
			rec      TradeRecord
			op       string
			strategy string
		)
		if err := rows.Scan(
			&rec.RunID,
			&rec.Seq,
			&rec.Time,
			&rec.Instrument,
			&op,
			&rec.Quantity,
			&strategy,
			&rec.Price,
			&rec.PortfolioValue,
		); err != nil {
			return nil, err
		}
		if rec.Action, err = ParseOperation(op); err != nil {
			return nil, err
		}
		rec.Strategy = strategies.ID(strategy)
		rec.Time = rec.Time.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
