package sim

import (
	"fmt"
	"sync"

	"github.com/rustyeddy/smatrader/broker"
)

// PriceStore keeps the last close per instrument.
type PriceStore struct {
	mu     sync.RWMutex
	prices map[string]broker.Price
}

func NewPriceStore() *PriceStore {
	return &PriceStore{prices: make(map[string]broker.Price)}
}

func (ps *PriceStore) Set(p broker.Price) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.prices[p.Instrument] = p
}

func (ps *PriceStore) Get(instr string) (broker.Price, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	p, ok := ps.prices[instr]
	if !ok {
		return broker.Price{}, fmt.Errorf("%w: %s", ErrNoPrice, instr)
	}
	return p, nil
}
