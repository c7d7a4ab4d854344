// Package portfolio keeps the per-strategy share ledger.
//
// Shares are booked under the (instrument, strategy) pair that bought them,
// and only a close for that same pair can release them. Two strategies that
// both hold the same instrument never see each other's shares.
package portfolio

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rustyeddy/smatrader/strategies"
)

// ErrInvalidQty is returned when an open is booked with a non-positive quantity.
var ErrInvalidQty = errors.New("portfolio: quantity must be positive")

// ErrUnknownPair is returned for an instrument or strategy the ledger was not
// created with.
var ErrUnknownPair = errors.New("portfolio: unknown instrument/strategy pair")

// Key identifies one ledger entry.
type Key struct {
	Instrument string
	Strategy   strategies.ID
}

func (k Key) String() string {
	return k.Instrument + "/" + string(k.Strategy)
}

// Entry is a read-only view of one ledger row.
type Entry struct {
	Key
	Shares int64
}

// Ledger maps (instrument, strategy) to shares held. It is not safe for
// concurrent use; a simulation run owns exactly one.
type Ledger struct {
	shares      map[Key]int64
	instruments []string
	strategies  []strategies.ID
}

// NewLedger creates a ledger with a zero entry for every
// (instrument, strategy) pair.
func NewLedger(instruments []string, strats []strategies.ID) *Ledger {
	l := &Ledger{
		shares:      make(map[Key]int64, len(instruments)*len(strats)),
		instruments: append([]string(nil), instruments...),
		strategies:  append([]strategies.ID(nil), strats...),
	}
	for _, inst := range instruments {
		for _, s := range strats {
			l.shares[Key{inst, s}] = 0
		}
	}
	return l
}

// RecordOpen adds qty shares to the pair.
func (l *Ledger) RecordOpen(instrument string, strategy strategies.ID, qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("%w: %d for %s/%s", ErrInvalidQty, qty, instrument, strategy)
	}
	k := Key{instrument, strategy}
	if _, ok := l.shares[k]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPair, k)
	}
	l.shares[k] += qty
	return nil
}

// RecordClose returns the shares held by the pair and zeroes the entry.
// Closing an empty or unknown pair returns 0 and changes nothing.
func (l *Ledger) RecordClose(instrument string, strategy strategies.ID) int64 {
	k := Key{instrument, strategy}
	qty, ok := l.shares[k]
	if !ok || qty == 0 {
		return 0
	}
	l.shares[k] = 0
	return qty
}

// Held returns the shares held by the pair.
func (l *Ledger) Held(instrument string, strategy strategies.ID) int64 {
	return l.shares[Key{instrument, strategy}]
}

// Total returns the shares of instrument held across all strategies.
func (l *Ledger) Total(instrument string) int64 {
	var n int64
	for _, s := range l.strategies {
		n += l.shares[Key{instrument, s}]
	}
	return n
}

// Entries lists every pair in construction order, zero entries included.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, 0, len(l.shares))
	for _, inst := range l.instruments {
		for _, s := range l.strategies {
			k := Key{inst, s}
			out = append(out, Entry{Key: k, Shares: l.shares[k]})
		}
	}
	return out
}

// Open lists the non-zero entries sorted by key.
func (l *Ledger) Open() []Entry {
	var out []Entry
	for k, n := range l.shares {
		if n > 0 {
			out = append(out, Entry{Key: k, Shares: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
