package strategies

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(cur, prev Point) Snapshot {
	cur.Ready, prev.Ready = true, true
	return Snapshot{Instrument: "X", Cur: cur, Prev: prev, HavePrev: true}
}

func TestDetectRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		s    Snapshot
		want []Signal
	}{
		{
			name: "close crosses above fast only",
			s:    snap(Point{Close: 101, Fast: 100, Slow: 90}, Point{Close: 99, Fast: 100, Slow: 90}),
			want: []Signal{{"X", FastSMACross, Buy}},
		},
		{
			name: "close crosses below fast only",
			s:    snap(Point{Close: 99, Fast: 100, Slow: 90}, Point{Close: 101, Fast: 100, Slow: 90}),
			want: []Signal{{"X", FastSMACross, Sell}},
		},
		{
			name: "close crosses above slow only",
			s:    snap(Point{Close: 101, Fast: 110, Slow: 100}, Point{Close: 99, Fast: 110, Slow: 100}),
			want: []Signal{{"X", SlowSMACross, Buy}},
		},
		{
			name: "fast crosses below slow only",
			s:    snap(Point{Close: 50, Fast: 99, Slow: 100}, Point{Close: 50, Fast: 101, Slow: 100}),
			want: []Signal{{"X", FastSlowCross, Sell}},
		},
		{
			name: "previous equal counts as from below",
			s:    snap(Point{Close: 101, Fast: 100, Slow: 200}, Point{Close: 100, Fast: 100, Slow: 200}),
			want: []Signal{{"X", FastSMACross, Buy}},
		},
		{
			name: "current tie fires nothing",
			s:    snap(Point{Close: 100, Fast: 100, Slow: 100}, Point{Close: 99, Fast: 101, Slow: 98}),
			want: nil,
		},
		{
			name: "all three fire in order",
			s:    snap(Point{Close: 120, Fast: 110, Slow: 105}, Point{Close: 95, Fast: 100, Slow: 101}),
			want: []Signal{{"X", FastSMACross, Buy}, {"X", SlowSMACross, Buy}, {"X", FastSlowCross, Buy}},
		},
		{
			name: "mixed directions",
			s:    snap(Point{Close: 104, Fast: 106, Slow: 103}, Point{Close: 108, Fast: 105, Slow: 110}),
			want: []Signal{{"X", FastSMACross, Sell}, {"X", SlowSMACross, Buy}, {"X", FastSlowCross, Buy}},
		},
		{
			name: "no crossing",
			s:    snap(Point{Close: 120, Fast: 110, Slow: 100}, Point{Close: 119, Fast: 109, Slow: 99}),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.s))
		})
	}
}

func TestDetectMissingLookback(t *testing.T) {
	t.Parallel()

	crossing := snap(Point{Close: 120, Fast: 110, Slow: 105}, Point{Close: 95, Fast: 100, Slow: 101})
	require.Len(t, Detect(crossing), 3)

	first := crossing
	first.HavePrev = false
	assert.Nil(t, Detect(first), "first bar has no t-1")

	warm := crossing
	warm.Prev.Ready = false
	assert.Nil(t, Detect(warm), "previous averages still warming up")

	cold := crossing
	cold.Cur.Ready = false
	assert.Nil(t, Detect(cold))
}

func TestDetectBuySellExclusive(t *testing.T) {
	t.Parallel()

	// Small integer domain so ties are frequent.
	rng := rand.New(rand.NewSource(42))
	v := func() float64 { return float64(rng.Intn(5)) }

	for i := 0; i < 5000; i++ {
		s := snap(Point{Close: v(), Fast: v(), Slow: v()}, Point{Close: v(), Fast: v(), Slow: v()})
		seen := map[ID]int{}
		for _, sig := range Detect(s) {
			seen[sig.Strategy]++
			assert.Equal(t, "X", sig.Instrument)
		}
		for id, n := range seen {
			require.Equal(t, 1, n, "strategy %s fired %d times on one bar: %+v", id, n, s)
		}
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   string
		want ID
	}{
		{"FastSMACross", FastSMACross},
		{"slowsmacross", SlowSMACross},
		{"fast-slow-cross", FastSlowCross},
		{" fast_sma_cross ", FastSMACross},
	} {
		got, err := Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}

	_, err := Parse("ema-cross")
	assert.Error(t, err)
}

func TestIDAndAction(t *testing.T) {
	t.Parallel()

	assert.Len(t, All, 3)
	for _, id := range All {
		assert.True(t, id.Valid())
		assert.NotEmpty(t, id.Description())
	}
	assert.False(t, ID("Other").Valid())
	assert.Equal(t, "Valor de cierre vs SMA10", FastSMACross.Description())

	assert.Equal(t, "Buy", Buy.String())
	assert.Equal(t, "Sell", Sell.String())
	assert.Equal(t, "Action(0)", Action(0).String())
}
