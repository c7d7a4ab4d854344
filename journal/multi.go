package journal

import (
	"errors"
	"fmt"
)

// Multi fans a record out to several journals in order. The first failure
// stops the fan-out and is returned.
type Multi struct {
	sinks []Journal
}

func NewMulti(sinks ...Journal) *Multi {
	out := &Multi{}
	for _, s := range sinks {
		if s != nil {
			out.sinks = append(out.sinks, s)
		}
	}
	return out
}

func (m *Multi) Record(t TradeRecord) error {
	for _, s := range m.sinks {
		if err := s.Record(t); err != nil {
			if errors.Is(err, ErrWrite) {
				return err
			}
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
