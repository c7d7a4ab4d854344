package indicators

import (
	"testing"
	"time"

	"github.com/rustyeddy/smatrader/market"
	"github.com/stretchr/testify/assert"
)

func createTestCandles() []market.Candle {
	base := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	closes := []float64{102, 105, 106, 108, 110, 111, 113, 114, 116, 118}
	out := make([]market.Candle, len(closes))
	for i, c := range closes {
		out[i] = market.Candle{Time: base.AddDate(0, 0, i), Close: c}
	}
	return out
}

func closesOf(candles []market.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

func TestSimpleMAStreaming(t *testing.T) {
	candles := createTestCandles()

	t.Run("basic functionality", func(t *testing.T) {
		ma := NewMA(3)
		assert.Equal(t, "SMA(3)", ma.Name())
		assert.Equal(t, 3, ma.Warmup())
		assert.Equal(t, 3, ma.Period())
		assert.False(t, ma.Ready())
		assert.Equal(t, 0.0, ma.Value())

		ma.Update(candles[0])
		assert.False(t, ma.Ready())

		ma.Update(candles[1])
		assert.False(t, ma.Ready())

		// Update with third candle - should be ready now
		ma.Update(candles[2])
		assert.True(t, ma.Ready())
		assert.InDelta(t, (102.0+105.0+106.0)/3.0, ma.Value(), 1e-9)

		// Update with fourth candle - should use last 3
		ma.Update(candles[3])
		assert.InDelta(t, (105.0+106.0+108.0)/3.0, ma.Value(), 1e-9)
	})

	t.Run("reset functionality", func(t *testing.T) {
		ma := NewMA(2)
		ma.Update(candles[0])
		ma.Update(candles[1])
		assert.True(t, ma.Ready())

		ma.Reset()
		assert.False(t, ma.Ready())
		assert.Equal(t, 0.0, ma.Value())

		ma.Update(candles[5])
		ma.Update(candles[6])
		assert.InDelta(t, 112.0, ma.Value(), 1e-9)
	})

	t.Run("matches window sum", func(t *testing.T) {
		closes := closesOf(candles)
		ma := NewMA(4)
		for i, c := range candles {
			ma.Update(c)
			if i < 3 {
				assert.False(t, ma.Ready(), "index %d", i)
				continue
			}
			sum := 0.0
			for _, v := range closes[i-3 : i+1] {
				sum += v
			}
			assert.True(t, ma.Ready(), "index %d", i)
			assert.InDelta(t, sum/4, ma.Value(), 1e-9, "index %d", i)
		}
	})

	t.Run("invalid period panics", func(t *testing.T) {
		assert.Panics(t, func() { NewMA(0) })
	})
}
