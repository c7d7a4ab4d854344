package backtest

import (
	"context"
	"errors"
	"fmt"

	"github.com/rustyeddy/smatrader/broker"
	"github.com/rustyeddy/smatrader/journal"
	"github.com/rustyeddy/smatrader/portfolio"
	"github.com/rustyeddy/smatrader/risk"
	"github.com/rustyeddy/smatrader/strategies"
)

// Outcome is what became of one signal.
type Outcome int8

const (
	Executed Outcome = iota
	InsufficientCash
	ZeroQuantity
	NoOpenPosition
)

func (o Outcome) String() string {
	switch o {
	case Executed:
		return "Executed"
	case InsufficientCash:
		return "InsufficientCash"
	case ZeroQuantity:
		return "ZeroQuantity"
	case NoOpenPosition:
		return "NoOpenPosition"
	default:
		return fmt.Sprintf("Outcome(%d)", int8(o))
	}
}

// Allocator turns signals into orders. Buys are sized against the
// portfolio value; sells close exactly what the signalling strategy opened
// on that instrument.
type Allocator struct {
	Broker  broker.Broker
	Ledger  *portfolio.Ledger
	Journal journal.Journal
	Policy  risk.Policy

	// RunID stamps every journal record. Seq numbers records from 1.
	RunID string
	seq   int
}

// Seq returns the number of records journaled so far.
func (a *Allocator) Seq() int { return a.seq }

// Dispatch routes a signal to Buy or Sell.
func (a *Allocator) Dispatch(ctx context.Context, sig strategies.Signal) (Outcome, error) {
	switch sig.Action {
	case strategies.Buy:
		return a.Buy(ctx, sig.Instrument, sig.Strategy)
	case strategies.Sell:
		return a.Sell(ctx, sig.Instrument, sig.Strategy)
	default:
		return 0, fmt.Errorf("dispatch %s/%s: invalid action %s", sig.Instrument, sig.Strategy, sig.Action)
	}
}

// Buy allocates a fixed fraction of the portfolio value to instrument on
// behalf of strategy. The journal carries the value read before the fill.
func (a *Allocator) Buy(ctx context.Context, instrument string, strategy strategies.ID) (Outcome, error) {
	acct, err := a.Broker.GetAccount(ctx)
	if err != nil {
		return 0, fmt.Errorf("buy %s: account: %w", instrument, err)
	}
	px, err := a.Broker.GetPrice(ctx, instrument)
	if err != nil {
		return 0, fmt.Errorf("buy %s: %w", instrument, err)
	}

	d := a.Policy.Evaluate(risk.Inputs{
		Value: acct.Equity,
		Cash:  acct.Balance,
		Price: px.Close,
	})
	if !d.Allowed {
		if d.Has(risk.CodeInsufficientCash) {
			return InsufficientCash, nil
		}
		return ZeroQuantity, nil
	}

	fill, err := a.Broker.CreateMarketOrder(ctx, broker.MarketOrderRequest{
		Instrument: instrument,
		Units:      d.Size.Qty,
	})
	if err != nil {
		return 0, fmt.Errorf("buy %s %d: %w", instrument, d.Size.Qty, err)
	}
	if err := a.Ledger.RecordOpen(instrument, strategy, fill.Units); err != nil {
		return 0, err
	}

	err = a.record(journal.TradeRecord{
		Instrument:     instrument,
		Action:         strategies.Buy,
		Quantity:       fill.Units,
		Strategy:       strategy,
		PortfolioValue: acct.Equity,
		Time:           fill.Time,
		Price:          fill.Price,
	})
	if err != nil {
		return 0, err
	}
	return Executed, nil
}

// Sell closes everything strategy holds in instrument. Shares opened by
// other strategies are untouched. The journal carries the value read after
// the fill.
func (a *Allocator) Sell(ctx context.Context, instrument string, strategy strategies.ID) (Outcome, error) {
	qty := a.Ledger.RecordClose(instrument, strategy)
	if qty == 0 {
		return NoOpenPosition, nil
	}

	fill, err := a.Broker.CreateMarketOrder(ctx, broker.MarketOrderRequest{
		Instrument: instrument,
		Units:      -qty,
	})
	if err != nil {
		return 0, fmt.Errorf("sell %s %d: %w", instrument, qty, err)
	}
	acct, err := a.Broker.GetAccount(ctx)
	if err != nil {
		return 0, fmt.Errorf("sell %s: account: %w", instrument, err)
	}

	err = a.record(journal.TradeRecord{
		Instrument:     instrument,
		Action:         strategies.Sell,
		Quantity:       qty,
		Strategy:       strategy,
		PortfolioValue: acct.Equity,
		Time:           fill.Time,
		Price:          fill.Price,
	})
	if err != nil {
		return 0, err
	}
	return Executed, nil
}

func (a *Allocator) record(t journal.TradeRecord) error {
	a.seq++
	t.RunID = a.RunID
	t.Seq = a.seq
	if err := a.Journal.Record(t); err != nil {
		if errors.Is(err, journal.ErrWrite) {
			return err
		}
		return fmt.Errorf("%w: %w", journal.ErrWrite, err)
	}
	return nil
}
