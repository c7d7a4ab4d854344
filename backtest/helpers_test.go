package backtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/smatrader/broker"
	"github.com/rustyeddy/smatrader/journal"
	"github.com/rustyeddy/smatrader/market"
	"github.com/rustyeddy/smatrader/sim"
)

var t0 = time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)

func day(i int) time.Time { return t0.AddDate(0, 0, i) }

func series(inst string, closes ...float64) *market.Series {
	s := &market.Series{Instrument: inst}
	for i, c := range closes {
		s.Candles = append(s.Candles, market.Candle{
			Time: day(i), Open: c, High: c, Low: c, Close: c,
		})
	}
	return s
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newEngine(cash string) *sim.Engine {
	return sim.NewEngine(broker.Account{ID: "test", Balance: d(cash)})
}

func mark(t *testing.T, e *sim.Engine, inst, close string) {
	t.Helper()
	require.NoError(t, e.UpdatePrice(broker.Price{Instrument: inst, Close: d(close), Time: t0}))
}

func account(t *testing.T, e *sim.Engine) broker.Account {
	t.Helper()
	acct, err := e.GetAccount(context.Background())
	require.NoError(t, err)
	return acct
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}

// failJournal accepts ok records and then fails every write.
type failJournal struct {
	ok int
	n  int
}

func (f *failJournal) Record(journal.TradeRecord) error {
	f.n++
	if f.n > f.ok {
		return errors.New("disk full")
	}
	return nil
}

func (f *failJournal) Close() error { return nil }

// recordingMarket logs the marks and orders that reach the engine.
type recordingMarket struct {
	*sim.Engine
	events []string
}

func (r *recordingMarket) UpdatePrice(p broker.Price) error {
	r.events = append(r.events, "mark "+p.Instrument+" "+p.Time.Format(market.DateLayout))
	return r.Engine.UpdatePrice(p)
}

func (r *recordingMarket) CreateMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderFill, error) {
	fill, err := r.Engine.CreateMarketOrder(ctx, req)
	if err == nil {
		r.events = append(r.events, "order "+req.Instrument+" "+fill.Time.Format(market.DateLayout))
	}
	return fill, err
}
