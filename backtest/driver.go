// Package backtest replays daily bars for a universe of instruments through
// the three crossover strategies against a simulated cash account.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/smatrader/broker"
	"github.com/rustyeddy/smatrader/indicators"
	"github.com/rustyeddy/smatrader/journal"
	"github.com/rustyeddy/smatrader/market"
	"github.com/rustyeddy/smatrader/pkg/id"
	"github.com/rustyeddy/smatrader/portfolio"
	"github.com/rustyeddy/smatrader/risk"
	"github.com/rustyeddy/smatrader/sim"
	"github.com/rustyeddy/smatrader/strategies"
)

const (
	DefaultFastPeriod = 10
	DefaultSlowPeriod = 30
)

var ErrAlreadyRun = errors.New("backtest: driver already run")

// State is the lifecycle of a Driver.
type State int8

const (
	Init State = iota
	Running
	Terminated
)

func (s State) String() string {
	switch s {
	case Init:
		return "Init"
	case Running:
		return "Running"
	case Terminated:
		return "Terminated"
	default:
		return fmt.Sprintf("State(%d)", int8(s))
	}
}

// Market is the engine the driver marks to each close and trades against.
type Market interface {
	broker.Broker
	UpdatePrice(p broker.Price) error
}

// Config describes one run. Series order is the order instruments are
// processed within a bar.
type Config struct {
	Series      []*market.Series
	FastPeriod  int
	SlowPeriod  int
	Policy      risk.Policy
	InitialCash decimal.Decimal

	// Strategies limits which rules may trade. Empty enables all of them.
	Strategies []strategies.ID

	// Journal receives every executed trade. It must already be reset.
	Journal journal.Journal

	// Engine defaults to a sim.Engine funded with InitialCash.
	Engine Market
	RunID  string
	Logger *slog.Logger
}

type instrumentState struct {
	series *market.Series
	cursor *market.Cursor
	fast   *indicators.SimpleMA
	slow   *indicators.SimpleMA

	prev     strategies.Point
	havePrev bool
}

// Driver runs the master clock. Each step marks every instrument with a bar
// at that time, then evaluates and dispatches instruments in order.
type Driver struct {
	cfg    Config
	state  State
	log    *slog.Logger
	engine Market
	ledger *portfolio.Ledger
	alloc  *Allocator
	insts  []*instrumentState
	clock  []time.Time
	stats  *stats

	rules   []strategies.ID
	enabled map[strategies.ID]bool
}

// NewDriver validates cfg and initialises the run: every (instrument,
// strategy) pair starts flat and every average starts empty.
func NewDriver(cfg Config) (*Driver, error) {
	if len(cfg.Series) == 0 {
		return nil, fmt.Errorf("backtest: no instruments")
	}
	if cfg.Journal == nil {
		return nil, fmt.Errorf("backtest: Journal is required")
	}
	if cfg.FastPeriod == 0 {
		cfg.FastPeriod = DefaultFastPeriod
	}
	if cfg.SlowPeriod == 0 {
		cfg.SlowPeriod = DefaultSlowPeriod
	}
	if cfg.FastPeriod < 1 || cfg.SlowPeriod < 1 {
		return nil, fmt.Errorf("backtest: periods must be positive, got %d/%d", cfg.FastPeriod, cfg.SlowPeriod)
	}
	if cfg.Policy.AllocationFraction.IsZero() {
		cfg.Policy = risk.DefaultPolicy()
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}
	if cfg.Engine == nil && !cfg.InitialCash.IsPositive() {
		return nil, fmt.Errorf("backtest: initial cash must be positive, got %s", cfg.InitialCash)
	}
	if cfg.RunID == "" {
		cfg.RunID = id.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	names := make([]string, 0, len(cfg.Series))
	seen := make(map[string]bool, len(cfg.Series))
	for i, s := range cfg.Series {
		if s == nil || s.Instrument == "" {
			return nil, fmt.Errorf("backtest: series %d has no instrument", i)
		}
		if seen[s.Instrument] {
			return nil, fmt.Errorf("backtest: duplicate instrument %s", s.Instrument)
		}
		seen[s.Instrument] = true
		names = append(names, s.Instrument)
	}

	enabled := make(map[strategies.ID]bool, len(strategies.All))
	for _, sid := range cfg.Strategies {
		if !sid.Valid() {
			return nil, fmt.Errorf("backtest: unknown strategy %q", sid)
		}
		if enabled[sid] {
			return nil, fmt.Errorf("backtest: duplicate strategy %s", sid)
		}
		enabled[sid] = true
	}
	var active []strategies.ID
	for _, sid := range strategies.All {
		if len(cfg.Strategies) == 0 || enabled[sid] {
			enabled[sid] = true
			active = append(active, sid)
		}
	}

	engine := cfg.Engine
	if engine == nil {
		engine = sim.NewEngine(broker.Account{ID: cfg.RunID, Balance: cfg.InitialCash})
	}
	acct, err := engine.GetAccount(context.Background())
	if err != nil {
		return nil, fmt.Errorf("backtest: account: %w", err)
	}
	cfg.InitialCash = acct.Equity

	d := &Driver{
		cfg:    cfg,
		state:  Init,
		log:    cfg.Logger.With("run_id", cfg.RunID),
		engine: engine,
		ledger: portfolio.NewLedger(names, strategies.All),
		clock:  market.Clock(cfg.Series...),
		stats:  newStats(),

		rules:   active,
		enabled: enabled,
	}
	d.alloc = &Allocator{
		Broker:  engine,
		Ledger:  d.ledger,
		Journal: cfg.Journal,
		Policy:  cfg.Policy,
		RunID:   cfg.RunID,
	}
	for _, s := range cfg.Series {
		d.insts = append(d.insts, &instrumentState{
			series: s,
			cursor: market.NewCursor(s),
			fast:   indicators.NewMA(cfg.FastPeriod),
			slow:   indicators.NewMA(cfg.SlowPeriod),
		})
	}
	return d, nil
}

func (d *Driver) State() State { return d.state }
func (d *Driver) RunID() string { return d.cfg.RunID }
func (d *Driver) Ledger() *portfolio.Ledger { return d.ledger }
func (d *Driver) Engine() Market { return d.engine }
func (d *Driver) Clock() []time.Time { return d.clock }

// Run replays the whole clock once. A journal failure or an engine
// rejection stops the run with an error and leaves the driver Terminated.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	if d.state != Init {
		return Result{}, ErrAlreadyRun
	}
	d.state = Running
	defer func() { d.state = Terminated }()

	d.log.Info("backtest started",
		"instruments", len(d.insts),
		"bars", len(d.clock),
		"fast", d.cfg.FastPeriod,
		"slow", d.cfg.SlowPeriod,
		"allocation", d.cfg.Policy.AllocationFraction.String(),
		"cash", d.cfg.InitialCash.String(),
	)

	active := make([]bool, len(d.insts))
	bars := make([]market.Candle, len(d.insts))

	for _, t := range d.clock {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		for i, st := range d.insts {
			c, ok := st.cursor.At(t)
			active[i] = ok
			if !ok {
				continue
			}
			bars[i] = c
			if math.IsNaN(c.Close) || math.IsInf(c.Close, 0) || c.Close <= 0 {
				return Result{}, fmt.Errorf("mark %s at %s: invalid close %v", st.series.Instrument, t.Format(market.DateLayout), c.Close)
			}
			err := d.engine.UpdatePrice(broker.Price{
				Instrument: st.series.Instrument,
				Close:      decimal.NewFromFloat(c.Close),
				Time:       c.Time,
			})
			if err != nil {
				return Result{}, fmt.Errorf("mark %s at %s: %w", st.series.Instrument, t.Format(market.DateLayout), err)
			}
		}

		for i, st := range d.insts {
			if !active[i] {
				continue
			}
			if err := d.step(ctx, st, bars[i]); err != nil {
				return Result{}, fmt.Errorf("%s at %s: %w", st.series.Instrument, t.Format(market.DateLayout), err)
			}
		}
		d.stats.bars++
	}

	res, err := d.result(ctx)
	if err != nil {
		return Result{}, err
	}
	d.log.Info("backtest finished",
		"bars", res.Bars,
		"trades", res.Trades,
		"cash", res.FinalCash.String(),
		"value", res.FinalValue.String(),
	)
	return res, nil
}

func (d *Driver) step(ctx context.Context, st *instrumentState, c market.Candle) error {
	st.fast.Update(c)
	st.slow.Update(c)

	cur := strategies.Point{
		Close: c.Close,
		Fast:  st.fast.Value(),
		Slow:  st.slow.Value(),
		Ready: st.fast.Ready() && st.slow.Ready(),
	}
	snap := strategies.Snapshot{
		Instrument: st.series.Instrument,
		Cur:        cur,
		Prev:       st.prev,
		HavePrev:   st.havePrev,
	}
	st.prev, st.havePrev = cur, true

	for _, sig := range strategies.Detect(snap) {
		if !d.enabled[sig.Strategy] {
			continue
		}
		out, err := d.alloc.Dispatch(ctx, sig)
		if err != nil {
			return err
		}
		d.stats.add(sig, out)
		d.log.Debug("signal",
			"time", c.Time.Format(market.DateLayout),
			"instrument", sig.Instrument,
			"strategy", sig.Strategy.String(),
			"action", sig.Action.String(),
			"outcome", out.String(),
		)
	}
	return nil
}

func (d *Driver) result(ctx context.Context) (Result, error) {
	acct, err := d.engine.GetAccount(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("final account: %w", err)
	}

	res := Result{
		RunID:              d.cfg.RunID,
		Bars:               d.stats.bars,
		FastPeriod:         d.cfg.FastPeriod,
		SlowPeriod:         d.cfg.SlowPeriod,
		AllocationFraction: d.cfg.Policy.AllocationFraction,
		InitialCash:        d.cfg.InitialCash,
		FinalCash:          acct.Balance,
		FinalValue:         acct.Equity,
		Open:               d.ledger.Open(),
	}
	if len(d.clock) > 0 {
		res.Start = d.clock[0]
		res.End = d.clock[len(d.clock)-1]
	}
	for _, st := range d.insts {
		res.Instruments = append(res.Instruments, st.series.Instrument)
	}
	for _, sid := range d.rules {
		s := *d.stats.byStrategy[sid]
		res.Strategies = append(res.Strategies, s)
		res.Buys += s.Buys
		res.Sells += s.Sells
	}
	res.Trades = res.Buys + res.Sells
	return res, nil
}
