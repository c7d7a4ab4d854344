package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	t.Parallel()

	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		require.Len(t, next, 26)
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestNewAtOrdersByTime(t *testing.T) {
	t.Parallel()

	early := NewAt(time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC))
	late := NewAt(time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC))
	require.Len(t, early, 26)
	assert.Less(t, early, late)
}
