package backtest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/smatrader/journal"
	"github.com/rustyeddy/smatrader/portfolio"
	"github.com/rustyeddy/smatrader/strategies"
)

// StrategyStats counts what one strategy's signals came to.
type StrategyStats struct {
	Strategy strategies.ID

	Buys  int
	Sells int

	InsufficientCash int
	ZeroQuantity     int
	NoOpenPosition   int
}

// Signals is the number of signals the strategy emitted.
func (s StrategyStats) Signals() int {
	return s.Buys + s.Sells + s.InsufficientCash + s.ZeroQuantity + s.NoOpenPosition
}

// Result is the summary of a finished run.
type Result struct {
	RunID       string
	Instruments []string
	Start       time.Time
	End         time.Time
	Bars        int

	FastPeriod         int
	SlowPeriod         int
	AllocationFraction decimal.Decimal

	InitialCash decimal.Decimal
	FinalCash   decimal.Decimal
	FinalValue  decimal.Decimal

	Trades int
	Buys   int
	Sells  int

	// Strategies is in the order of strategies.All.
	Strategies []StrategyStats
	// Open is every pair still holding shares at the end.
	Open []portfolio.Entry
}

func (r Result) NetPL() decimal.Decimal {
	return r.FinalValue.Sub(r.InitialCash)
}

// Run converts the result to the journal's run summary. Dataset, paths and
// creation time are the caller's to fill.
func (r Result) Run() journal.BacktestRun {
	return journal.BacktestRun{
		RunID:              r.RunID,
		Instruments:        append([]string(nil), r.Instruments...),
		Start:              r.Start,
		End:                r.End,
		FastPeriod:         r.FastPeriod,
		SlowPeriod:         r.SlowPeriod,
		AllocationFraction: r.AllocationFraction,
		InitialCash:        r.InitialCash,
		FinalCash:          r.FinalCash,
		FinalValue:         r.FinalValue,
		Bars:               r.Bars,
		Trades:             r.Trades,
		Buys:               r.Buys,
		Sells:              r.Sells,
	}
}

type stats struct {
	bars       int
	byStrategy map[strategies.ID]*StrategyStats
}

func newStats() *stats {
	s := &stats{byStrategy: make(map[strategies.ID]*StrategyStats, len(strategies.All))}
	for _, id := range strategies.All {
		s.byStrategy[id] = &StrategyStats{Strategy: id}
	}
	return s
}

func (s *stats) add(sig strategies.Signal, out Outcome) {
	st := s.byStrategy[sig.Strategy]
	switch out {
	case Executed:
		if sig.Action == strategies.Buy {
			st.Buys++
		} else {
			st.Sells++
		}
	case InsufficientCash:
		st.InsufficientCash++
	case ZeroQuantity:
		st.ZeroQuantity++
	case NoOpenPosition:
		st.NoOpenPosition++
	}
}
