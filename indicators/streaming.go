package indicators

import (
	"fmt"

	"github.com/rustyeddy/smatrader/market"
)

// SimpleMA is a streaming Simple Moving Average over candle closes.
//
// The window is a fixed ring. Value sums it oldest to newest on every call,
// no running total is kept, so the result is bit-identical to SMA and MA over
// the same closes.
type SimpleMA struct {
	period int
	window []float64
	next   int
	count  int
}

// NewMA creates a new Simple Moving Average indicator with the given period
func NewMA(period int) *SimpleMA {
	if period <= 0 {
		panic("SMA period must be > 0")
	}
	return &SimpleMA{
		period: period,
		window: make([]float64, period),
	}
}

func (m *SimpleMA) Name() string {
	return fmt.Sprintf("SMA(%d)", m.period)
}

func (m *SimpleMA) Period() int { return m.period }
func (m *SimpleMA) Warmup() int { return m.period }

func (m *SimpleMA) Reset() {
	for i := range m.window {
		m.window[i] = 0
	}
	m.next = 0
	m.count = 0
}

func (m *SimpleMA) Update(c market.Candle) {
	m.window[m.next] = c.Close
	m.next = (m.next + 1) % m.period
	if m.count < m.period {
		m.count++
	}
}

func (m *SimpleMA) Ready() bool {
	return m.count >= m.period
}

func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return 0
	}

	sum := 0.0
	for i := 0; i < m.period; i++ {
		sum += m.window[(m.next+i)%m.period]
	}
	return sum / float64(m.period)
}

var _ Indicator = (*SimpleMA)(nil)
