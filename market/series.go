package market

import (
	"sort"
	"time"
)

// Series is the ordered bar history of a single instrument.
// Candles are sorted by Time ascending with no duplicate times.
type Series struct {
	Instrument string
	Source     string
	Candles    []Candle
}

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	return len(s.Candles)
}

// Start returns the time of the first bar, or zero for an empty series.
func (s *Series) Start() time.Time {
	if len(s.Candles) == 0 {
		return time.Time{}
	}
	return s.Candles[0].Time
}

// End returns the time of the last bar, or zero for an empty series.
func (s *Series) End() time.Time {
	if len(s.Candles) == 0 {
		return time.Time{}
	}
	return s.Candles[len(s.Candles)-1].Time
}

// Closes returns the closing prices in bar order.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// Clock returns the sorted union of bar times across all series. It is the
// master clock a multi-instrument backtest advances on: every instrument sees
// the same sequence of times, and an instrument without a bar at a given time
// simply has nothing to evaluate there.
func Clock(series ...*Series) []time.Time {
	seen := make(map[int64]struct{})
	var out []time.Time
	for _, s := range series {
		if s == nil {
			continue
		}
		for _, c := range s.Candles {
			k := c.Time.UnixNano()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, c.Time)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Cursor walks a Series in step with a master clock.
type Cursor struct {
	s   *Series
	idx int
}

// NewCursor returns a cursor positioned before the first bar of s.
func NewCursor(s *Series) *Cursor {
	return &Cursor{s: s}
}

// At returns the bar stamped exactly t and advances past it. It reports false
// when the series has no bar at t. Times must be requested in ascending order.
func (c *Cursor) At(t time.Time) (Candle, bool) {
	for c.idx < len(c.s.Candles) && c.s.Candles[c.idx].Time.Before(t) {
		c.idx++
	}
	if c.idx >= len(c.s.Candles) || !c.s.Candles[c.idx].Time.Equal(t) {
		return Candle{}, false
	}
	candle := c.s.Candles[c.idx]
	c.idx++
	return candle, true
}
