package journal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingJournal struct {
	err    error
	closed bool
}

func (f *failingJournal) Record(TradeRecord) error { return f.err }
func (f *failingJournal) Close() error {
	f.closed = true
	return nil
}

func TestMemoryRecords(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	require.NoError(t, m.Record(buyRecord("A", 1, "100")))
	require.NoError(t, m.Record(buyRecord("B", 2, "100")))
	assert.Equal(t, 2, m.Len())

	recs := m.Records()
	recs[0].Instrument = "changed"
	assert.Equal(t, "A", m.Records()[0].Instrument)

	require.NoError(t, m.Close())
	assert.True(t, errors.Is(m.Record(buyRecord("C", 1, "1")), ErrWrite))
}

func TestMultiFansOutInOrder(t *testing.T) {
	t.Parallel()

	a, b := NewMemory(), NewMemory()
	m := NewMulti(a, nil, b)

	require.NoError(t, m.Record(buyRecord("A", 1, "100")))
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, b.Len())
	require.NoError(t, m.Close())
}

func TestMultiFirstFailureAborts(t *testing.T) {
	t.Parallel()

	first := NewMemory()
	bad := &failingJournal{err: errors.New("disk full")}
	after := NewMemory()
	m := NewMulti(first, bad, after)

	err := m.Record(buyRecord("A", 1, "100"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWrite))
	assert.Contains(t, err.Error(), "disk full")

	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 0, after.Len())

	require.NoError(t, m.Close())
	assert.True(t, bad.closed)
}
