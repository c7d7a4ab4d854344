package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// BacktestRun summarises one simulation run.
type BacktestRun struct {
	RunID   string
	Created time.Time
	Dataset string

	Instruments []string
	Start       time.Time
	End         time.Time

	// Parameters
	FastPeriod         int
	SlowPeriod         int
	AllocationFraction decimal.Decimal

	// Account
	InitialCash decimal.Decimal
	FinalCash   decimal.Decimal
	FinalValue  decimal.Decimal

	// Activity
	Bars   int
	Trades int
	Buys   int
	Sells  int

	CSVPath string
	OrgPath string
	Notes   []string
}

// NetPL is the change in portfolio value over the run.
func (r BacktestRun) NetPL() decimal.Decimal {
	return r.FinalValue.Sub(r.InitialCash)
}

// ReturnPct is NetPL as a percentage of the initial cash.
func (r BacktestRun) ReturnPct() decimal.Decimal {
	if r.InitialCash.IsZero() {
		return decimal.Zero
	}
	return r.NetPL().Div(r.InitialCash).Mul(decimal.NewFromInt(100))
}
