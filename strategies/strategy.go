// Package strategies holds the three moving-average crossover rules and the
// detector that evaluates them bar by bar.
package strategies

import (
	"fmt"
	"strings"
)

// ID names one of the fixed crossover rules.
type ID string

const (
	FastSMACross  ID = "FastSMACross"  // close vs fast SMA
	SlowSMACross  ID = "SlowSMACross"  // close vs slow SMA
	FastSlowCross ID = "FastSlowCross" // fast SMA vs slow SMA
)

// All lists every strategy in evaluation order.
var All = []ID{FastSMACross, SlowSMACross, FastSlowCross}

var descriptions = map[ID]string{
	FastSMACross:  "Valor de cierre vs SMA10",
	SlowSMACross:  "Valor de cierre vs SMA30",
	FastSlowCross: "Cruces de SMA10 y SMA30",
}

func (id ID) String() string { return string(id) }

// Description returns the human label used in reports.
func (id ID) Description() string {
	return descriptions[id]
}

// Valid reports whether id is one of All.
func (id ID) Valid() bool {
	_, ok := descriptions[id]
	return ok
}

// Parse resolves a strategy name case-insensitively. Dashed and underscored
// spellings such as "fast-sma-cross" are accepted.
func Parse(name string) (ID, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(name)))
	for _, id := range All {
		if strings.ToLower(string(id)) == norm {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown strategy %q (supported: %s, %s, %s)", name, FastSMACross, SlowSMACross, FastSlowCross)
}

// Action is the side of a signal.
type Action int8

const (
	Buy Action = iota + 1
	Sell
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return fmt.Sprintf("Action(%d)", int8(a))
	}
}

// Signal is one rule firing on one instrument at one bar.
type Signal struct {
	Instrument string
	Strategy   ID
	Action     Action
}
