package broker

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Broker is the market simulation engine as seen by the strategy core:
// account state on demand and market orders filled at the current close.
type Broker interface {
	GetAccount(ctx context.Context) (Account, error)
	GetPrice(ctx context.Context, instrument string) (Price, error)
	CreateMarketOrder(ctx context.Context, req MarketOrderRequest) (OrderFill, error)
}

// Account is a cash account holding long share positions.
type Account struct {
	ID       string
	Currency string
	Balance  decimal.Decimal // cash
	Equity   decimal.Decimal // cash + positions marked at last close
}

// Price is the last close of an instrument.
type Price struct {
	Instrument string
	Close      decimal.Decimal
	Time       time.Time
}

// MarketOrderRequest buys when Units > 0 and sells when Units < 0.
type MarketOrderRequest struct {
	Instrument string
	Units      int64
}

type OrderFill struct {
	TradeID    string
	Instrument string
	Units      int64
	Price      decimal.Decimal
	Time       time.Time
}

// Notional returns |units| * price.
func (f OrderFill) Notional() decimal.Decimal {
	u := f.Units
	if u < 0 {
		u = -u
	}
	return f.Price.Mul(decimal.NewFromInt(u))
}
