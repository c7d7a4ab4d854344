package risk

import "fmt"

const (
	CodeInsufficientCash = "INSUFFICIENT_CASH"
	CodeZeroQuantity     = "ZERO_QUANTITY"
)

type Violation struct {
	Code string
	Msg  string
}

// Decision is the verdict on a buy. When Allowed, Size.Qty is positive.
type Decision struct {
	Allowed    bool
	Violations []Violation
	Size       Result
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Has reports whether the decision carries a violation with code.
func (d Decision) Has(code string) bool {
	for _, v := range d.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// Evaluate sizes a buy and rejects it when cash is below the allocation
// target or the price is above it. No partial orders: a rejected buy is
// skipped as a whole.
func (p Policy) Evaluate(in Inputs) Decision {
	d := Decision{Allowed: true, Size: p.Calculate(in)}

	if in.Cash.LessThan(d.Size.Target) {
		d.add(CodeInsufficientCash,
			fmt.Sprintf("cash %s below allocation target %s", in.Cash, d.Size.Target))
		return d
	}
	if d.Size.Qty <= 0 {
		d.add(CodeZeroQuantity,
			fmt.Sprintf("price %s exceeds allocation target %s", in.Price, d.Size.Target))
	}
	return d
}
