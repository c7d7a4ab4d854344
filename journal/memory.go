package journal

import (
	"fmt"
	"sync"
)

// Memory keeps records in process. The backtest uses it to count trades
// and tests use it to inspect them.
type Memory struct {
	mu      sync.Mutex
	records []TradeRecord
	closed  bool
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Record(t TradeRecord) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("%w: memory journal is closed", ErrWrite)
	}
	m.records = append(m.records, t)
	return nil
}

// Records returns a copy of everything recorded so far.
func (m *Memory) Records() []TradeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TradeRecord, len(m.records))
	copy(out, m.records)
	return out
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
