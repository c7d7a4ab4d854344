package sim

import "github.com/shopspring/decimal"

// MarketValue is units * mark.
func MarketValue(units int64, mark decimal.Decimal) decimal.Decimal {
	return mark.Mul(decimal.NewFromInt(units))
}

// UnrealizedPL is the mark-to-market gain of a position over its cost basis.
func UnrealizedPL(p Position, mark decimal.Decimal) decimal.Decimal {
	return MarketValue(p.Units, mark).Sub(p.CostBasis)
}
