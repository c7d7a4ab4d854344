package risk

import "github.com/shopspring/decimal"

// Inputs is the account state a buy is sized against.
type Inputs struct {
	Value decimal.Decimal // total portfolio value, cash + marked positions
	Cash  decimal.Decimal
	Price decimal.Decimal // fill price, the bar close
}

// Result of sizing a buy. Qty is whole shares; Target is the money budget.
type Result struct {
	Target decimal.Decimal
	Qty    int64
}

// Calculate sizes a buy as floor(Value * fraction / Price) shares.
// It does not look at cash; Evaluate does.
func (p Policy) Calculate(in Inputs) Result {
	target := in.Value.Mul(p.AllocationFraction)
	if !in.Price.IsPositive() {
		return Result{Target: target}
	}
	return Result{
		Target: target,
		Qty:    target.Div(in.Price).Floor().IntPart(),
	}
}
