package risk

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultAllocation is the share of portfolio value targeted by each buy.
var DefaultAllocation = decimal.NewFromFloat(0.10)

// Policy is the whole of the risk model: a fixed allocation fraction.
type Policy struct {
	AllocationFraction decimal.Decimal // 0.10
}

// DefaultPolicy returns the 10% allocation policy.
func DefaultPolicy() Policy {
	return Policy{AllocationFraction: DefaultAllocation}
}

// Validate checks the fraction is in (0, 1].
func (p Policy) Validate() error {
	if !p.AllocationFraction.IsPositive() || p.AllocationFraction.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("allocation fraction must be in (0, 1], got %s", p.AllocationFraction)
	}
	return nil
}
