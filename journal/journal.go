// journal/journal.go
package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/smatrader/strategies"
)

// ErrWrite wraps every failure to persist a record. A trade that cannot be
// journaled must stop the run; callers test for it with errors.Is.
var ErrWrite = errors.New("journal: write failed")

// Journal literals for actions, as they appear in the CSV.
const (
	OpBuy  = "Compra"
	OpSell = "Venta"
)

// TradeRecord is one executed trade. Immutable once recorded.
type TradeRecord struct {
	// CSV columns
	Instrument     string
	Action         strategies.Action
	Quantity       int64
	Strategy       strategies.ID
	PortfolioValue decimal.Decimal

	// Audit fields, kept by the SQLite sink only.
	RunID string
	Seq   int
	Time  time.Time
	Price decimal.Decimal
}

// Operation returns the journal literal for the record's action.
func (t TradeRecord) Operation() string {
	return Operation(t.Action)
}

// Operation maps an action to its journal literal.
func Operation(a strategies.Action) string {
	switch a {
	case strategies.Buy:
		return OpBuy
	case strategies.Sell:
		return OpSell
	default:
		return a.String()
	}
}

// ParseOperation maps a journal literal back to an action.
func ParseOperation(s string) (strategies.Action, error) {
	switch s {
	case OpBuy:
		return strategies.Buy, nil
	case OpSell:
		return strategies.Sell, nil
	default:
		return 0, fmt.Errorf("unknown operation %q", s)
	}
}

// Validate rejects records that could never describe an executed trade.
func (t TradeRecord) Validate() error {
	if t.Instrument == "" {
		return errors.New("journal: empty instrument")
	}
	if t.Action != strategies.Buy && t.Action != strategies.Sell {
		return fmt.Errorf("journal: invalid action %s", t.Action)
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("journal: quantity must be positive, got %d", t.Quantity)
	}
	if !t.Strategy.Valid() {
		return fmt.Errorf("journal: unknown strategy %q", t.Strategy)
	}
	return nil
}

// FormatValue renders a portfolio value the way the CSV stores it: plain
// decimal notation with at least one fractional digit, so 100000 is
// written "100000.0".
func FormatValue(v decimal.Decimal) string {
	s := v.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Journal is an append-only sink of executed trades.
type Journal interface {
	Record(TradeRecord) error
	Close() error
}
