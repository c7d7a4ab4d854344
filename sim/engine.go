// Package sim is a cash-only market simulation engine for daily bars.
//
// Orders fill immediately at the instrument's last close, in whole shares,
// with no slippage, commission, margin or short selling.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/smatrader/broker"
	"github.com/rustyeddy/smatrader/pkg/id"
)

var (
	ErrNoPrice            = errors.New("sim: no price")
	ErrInsufficientCash   = errors.New("sim: insufficient cash")
	ErrInsufficientShares = errors.New("sim: insufficient shares")
	ErrZeroUnits          = errors.New("sim: units must be non-zero")
)

type Engine struct {
	mu        sync.Mutex
	acct      broker.Account
	prices    *PriceStore
	positions map[string]*Position
	trades    []Trade
	realized  decimal.Decimal
}

// NewEngine creates an engine holding only cash.
func NewEngine(acct broker.Account) *Engine {
	if acct.Currency == "" {
		acct.Currency = "USD"
	}
	acct.Equity = acct.Balance
	return &Engine{
		acct:      acct,
		prices:    NewPriceStore(),
		positions: make(map[string]*Position),
	}
}

// GetAccount returns cash and equity, where equity marks every position at
// its last close.
func (e *Engine) GetAccount(ctx context.Context) (broker.Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.revalueLocked(); err != nil {
		return broker.Account{}, err
	}
	return e.acct, nil
}

func (e *Engine) GetPrice(ctx context.Context, instr string) (broker.Price, error) {
	return e.prices.Get(instr)
}

// UpdatePrice records the latest close of an instrument.
func (e *Engine) UpdatePrice(p broker.Price) error {
	if !p.Close.IsPositive() {
		return fmt.Errorf("sim: close for %s must be positive, got %s", p.Instrument, p.Close)
	}
	e.prices.Set(p)
	return nil
}

// CreateMarketOrder buys (Units > 0) or sells (Units < 0) at the last close.
// A buy costing more than the cash balance and a sell of more shares than
// held are rejected without changing state.
func (e *Engine) CreateMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderFill, error) {
	if req.Units == 0 {
		return broker.OrderFill{}, ErrZeroUnits
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.prices.Get(req.Instrument)
	if err != nil {
		return broker.OrderFill{}, err
	}

	pos := e.positions[req.Instrument]
	if pos == nil {
		pos = &Position{Instrument: req.Instrument}
	}

	notional := MarketValue(req.Units, p.Close) // signed: negative on sells

	if req.Units > 0 {
		if notional.GreaterThan(e.acct.Balance) {
			return broker.OrderFill{}, fmt.Errorf("%w: buy %d %s costs %s, cash %s",
				ErrInsufficientCash, req.Units, req.Instrument, notional, e.acct.Balance)
		}
		pos.CostBasis = pos.CostBasis.Add(notional)
	} else {
		sold := -req.Units
		if sold > pos.Units {
			return broker.OrderFill{}, fmt.Errorf("%w: sell %d %s, held %d",
				ErrInsufficientShares, sold, req.Instrument, pos.Units)
		}
		// release cost basis pro rata
		basis := pos.CostBasis
		if sold != pos.Units {
			basis = pos.CostBasis.Mul(decimal.NewFromInt(sold)).Div(decimal.NewFromInt(pos.Units))
		}
		pos.CostBasis = pos.CostBasis.Sub(basis)
		e.realized = e.realized.Add(notional.Neg().Sub(basis))
	}

	pos.Units += req.Units
	e.positions[req.Instrument] = pos
	e.acct.Balance = e.acct.Balance.Sub(notional)

	fill := broker.OrderFill{
		TradeID:    id.New(),
		Instrument: req.Instrument,
		Units:      req.Units,
		Price:      p.Close,
		Time:       p.Time,
	}
	e.trades = append(e.trades, Trade{
		ID:           fill.TradeID,
		Instrument:   fill.Instrument,
		Units:        fill.Units,
		Price:        fill.Price,
		Time:         fill.Time,
		BalanceAfter: e.acct.Balance,
	})

	if err := e.revalueLocked(); err != nil {
		return broker.OrderFill{}, err
	}
	return fill, nil
}

// Position returns the net holding of instr.
func (e *Engine) Position(instr string) Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p := e.positions[instr]; p != nil {
		return *p
	}
	return Position{Instrument: instr}
}

// Positions returns every non-flat holding sorted by instrument.
func (e *Engine) Positions() []Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []Position
	for _, p := range e.positions {
		if p.Units != 0 {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Instrument < out[j].Instrument })
	return out
}

// Trades returns a copy of every fill in execution order.
func (e *Engine) Trades() []Trade {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Trade(nil), e.trades...)
}

// RealizedPL is the sum of gains booked by sells.
func (e *Engine) RealizedPL() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.realized
}

func (e *Engine) revalueLocked() error {
	equity := e.acct.Balance

	for _, p := range e.positions {
		if p.Units == 0 {
			continue
		}
		px, err := e.prices.Get(p.Instrument)
		if err != nil {
			return err
		}
		equity = equity.Add(MarketValue(p.Units, px.Close))
	}

	e.acct.Equity = equity
	return nil
}

var _ broker.Broker = (*Engine)(nil)
