package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculate(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()

	tests := []struct {
		name       string
		in         Inputs
		wantTarget string
		wantQty    int64
	}{
		{"even split", Inputs{Value: d("100000"), Cash: d("100000"), Price: d("50")}, "10000", 200},
		{"floors fractional shares", Inputs{Value: d("100000"), Cash: d("100000"), Price: d("333.33")}, "10000", 30},
		{"price above target", Inputs{Value: d("1000"), Cash: d("1000"), Price: d("150")}, "100", 0},
		{"zero price", Inputs{Value: d("1000"), Cash: d("1000"), Price: d("0")}, "100", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Calculate(tt.in)
			assert.True(t, d(tt.wantTarget).Equal(got.Target), "target %s", got.Target)
			assert.Equal(t, tt.wantQty, got.Qty)
		})
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()

	ok := p.Evaluate(Inputs{Value: d("100000"), Cash: d("100000"), Price: d("50")})
	assert.True(t, ok.Allowed)
	assert.Empty(t, ok.Violations)
	assert.Equal(t, int64(200), ok.Size.Qty)

	// exactly the target is enough
	edge := p.Evaluate(Inputs{Value: d("100000"), Cash: d("10000"), Price: d("50")})
	assert.True(t, edge.Allowed)

	poor := p.Evaluate(Inputs{Value: d("50000"), Cash: d("1000"), Price: d("10")})
	assert.False(t, poor.Allowed)
	require.Len(t, poor.Violations, 1)
	assert.True(t, poor.Has(CodeInsufficientCash))
	assert.False(t, poor.Has(CodeZeroQuantity))

	pricey := p.Evaluate(Inputs{Value: d("1000"), Cash: d("1000"), Price: d("150")})
	assert.False(t, pricey.Allowed)
	assert.True(t, pricey.Has(CodeZeroQuantity))
	assert.Contains(t, pricey.Violations[0].Msg, "exceeds allocation target")
}

func TestPolicyValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultPolicy().Validate())
	assert.NoError(t, Policy{AllocationFraction: d("1")}.Validate())
	assert.Error(t, Policy{AllocationFraction: d("0")}.Validate())
	assert.Error(t, Policy{AllocationFraction: d("-0.1")}.Validate())
	assert.Error(t, Policy{AllocationFraction: d("1.5")}.Validate())
}
