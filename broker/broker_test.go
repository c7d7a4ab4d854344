package broker

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderFillNotional(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		units int64
		price string
		want  string
	}{
		{"buy", 200, "50", "10000"},
		{"sell", -200, "50.25", "10050"},
		{"zero", 0, "12.5", "0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := OrderFill{Units: tt.units, Price: decimal.RequireFromString(tt.price)}
			assert.True(t, decimal.RequireFromString(tt.want).Equal(f.Notional()), "got %s", f.Notional())
		})
	}
}

func TestPriceFormatsAllFields(t *testing.T) {
	t.Parallel()

	p := Price{
		Instrument: "MSFT",
		Close:      decimal.RequireFromString("217.69"),
		Time:       time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC),
	}
	s := fmt.Sprintf("%v", p)
	assert.Contains(t, s, "MSFT")
	assert.Contains(t, s, "217.69")
	assert.Contains(t, s, "2021-01-04")
}
