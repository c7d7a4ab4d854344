package sim

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one executed fill. Units > 0 bought, < 0 sold.
type Trade struct {
	ID         string
	Instrument string
	Units      int64
	Price      decimal.Decimal
	Time       time.Time

	// Cash after the fill settled.
	BalanceAfter decimal.Decimal
}

// Position is the net long holding in one instrument across all strategies.
type Position struct {
	Instrument string
	Units      int64
	CostBasis  decimal.Decimal // total paid for the units still held
}

// AvgPrice returns the average entry price, zero when flat.
func (p Position) AvgPrice() decimal.Decimal {
	if p.Units == 0 {
		return decimal.Zero
	}
	return p.CostBasis.Div(decimal.NewFromInt(p.Units))
}
