package backtest

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/rustyeddy/smatrader/market"
)

// reportWriter remembers the first write error so a report can be written
// without checking every line.
type reportWriter struct {
	w   io.Writer
	err error
}

func (rw *reportWriter) Write(p []byte) (int, error) {
	if rw.err != nil {
		return 0, rw.err
	}
	n, err := rw.w.Write(p)
	if err != nil {
		rw.err = err
	}
	return n, err
}

// PrintResult writes a human summary of r.
func PrintResult(out io.Writer, r Result) error {
	w := &reportWriter{w: out}

	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	fmt.Fprintf(w, "Instruments:   %v\n", r.Instruments)
	fmt.Fprintf(w, "Fast/Slow SMA: %d/%d\n", r.FastPeriod, r.SlowPeriod)
	fmt.Fprintf(w, "Allocation:    %s%%\n", r.AllocationFraction.Shift(2).String())

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	if r.Bars > 0 {
		fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(market.DateLayout))
		fmt.Fprintf(w, "End:           %s\n", r.End.Format(market.DateLayout))
	}
	fmt.Fprintf(w, "Bars:          %d\n", r.Bars)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Cash:    %s\n", r.InitialCash.StringFixed(2))
	fmt.Fprintf(w, "End Cash:      %s\n", r.FinalCash.StringFixed(2))
	fmt.Fprintf(w, "End Value:     %s\n", r.FinalValue.StringFixed(2))
	fmt.Fprintf(w, "Net P/L:       %s\n", r.NetPL().StringFixed(2))
	fmt.Fprintf(w, "Trades:        %d (%d buys, %d sells)\n", r.Trades, r.Buys, r.Sells)

	fmt.Fprintln(w)
	table := tablewriter.NewWriter(w)
	table.Header("Strategy", "Description", "Signals", "Buys", "Sells", "No Cash", "Zero Qty", "Flat")
	for _, s := range r.Strategies {
		err := table.Append(
			s.Strategy.String(),
			s.Strategy.Description(),
			fmt.Sprintf("%d", s.Signals()),
			fmt.Sprintf("%d", s.Buys),
			fmt.Sprintf("%d", s.Sells),
			fmt.Sprintf("%d", s.InsufficientCash),
			fmt.Sprintf("%d", s.ZeroQuantity),
			fmt.Sprintf("%d", s.NoOpenPosition),
		)
		if err != nil {
			return fmt.Errorf("strategy table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("strategy table: %w", err)
	}

	if len(r.Open) == 0 {
		return w.err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Open Positions")
	tbl := tablewriter.NewWriter(w)
	tbl.Header("Instrument", "Strategy", "Shares")
	for _, e := range r.Open {
		if err := tbl.Append(e.Instrument, e.Strategy.String(), fmt.Sprintf("%d", e.Shares)); err != nil {
			return fmt.Errorf("open positions table: %w", err)
		}
	}
	if err := tbl.Render(); err != nil {
		return fmt.Errorf("open positions table: %w", err)
	}
	return w.err
}
