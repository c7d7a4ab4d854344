// Package indicators provides technical analysis indicators for trading
package indicators

import "github.com/rustyeddy/smatrader/market"

// Indicator computes a single streaming value from candles.
// It is deterministic and safe to use in replays and backtests.
type Indicator interface {
	// Name returns a stable identifier like "SMA(10)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next *closed* candle and updates internal state.
	Update(c market.Candle)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current indicator value, 0 when !Ready().
	Value() float64
}
