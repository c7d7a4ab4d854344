package backtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/smatrader/broker"
	"github.com/rustyeddy/smatrader/journal"
	"github.com/rustyeddy/smatrader/portfolio"
	"github.com/rustyeddy/smatrader/risk"
	"github.com/rustyeddy/smatrader/strategies"
)

type mockBroker struct {
	mock.Mock
}

func (m *mockBroker) GetAccount(ctx context.Context) (broker.Account, error) {
	args := m.Called(ctx)
	return args.Get(0).(broker.Account), args.Error(1)
}

func (m *mockBroker) GetPrice(ctx context.Context, instrument string) (broker.Price, error) {
	args := m.Called(ctx, instrument)
	return args.Get(0).(broker.Price), args.Error(1)
}

func (m *mockBroker) CreateMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderFill, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(broker.OrderFill), args.Error(1)
}

func newMockAllocator(b *mockBroker) (*Allocator, *journal.Memory) {
	mem := journal.NewMemory()
	return &Allocator{
		Broker:  b,
		Ledger:  portfolio.NewLedger([]string{"X"}, strategies.All),
		Journal: mem,
		Policy:  risk.DefaultPolicy(),
		RunID:   "RUN",
	}, mem
}

func TestAllocatorBuyOrderRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := &mockBroker{}
	a, mem := newMockAllocator(b)

	b.On("GetAccount", ctx).Return(broker.Account{Balance: d("100000"), Equity: d("100000")}, nil)
	b.On("GetPrice", ctx, "X").Return(broker.Price{Instrument: "X", Close: d("50")}, nil)
	b.On("CreateMarketOrder", ctx, broker.MarketOrderRequest{Instrument: "X", Units: 200}).
		Return(broker.OrderFill{}, errors.New("rejected"))

	_, err := a.Buy(ctx, "X", strategies.FastSMACross)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")

	assert.Equal(t, int64(0), a.Ledger.Total("X"))
	assert.Equal(t, 0, mem.Len())
	b.AssertExpectations(t)
}

func TestAllocatorSellReadsValueAfterFill(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := &mockBroker{}
	a, mem := newMockAllocator(b)
	require.NoError(t, a.Ledger.RecordOpen("X", strategies.SlowSMACross, 30))

	order := b.On("CreateMarketOrder", ctx, broker.MarketOrderRequest{Instrument: "X", Units: -30}).
		Return(broker.OrderFill{Instrument: "X", Units: -30, Price: d("41.5")}, nil).Once()
	b.On("GetAccount", ctx).
		Return(broker.Account{Balance: d("51245"), Equity: d("99999.5")}, nil).
		Once().
		NotBefore(order)

	out, err := a.Sell(ctx, "X", strategies.SlowSMACross)
	require.NoError(t, err)
	assert.Equal(t, Executed, out)

	recs := mem.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, int64(30), recs[0].Quantity)
	assertDec(t, "99999.5", recs[0].PortfolioValue)
	assertDec(t, "41.5", recs[0].Price)
	b.AssertExpectations(t)
}

func TestAllocatorZeroQuantityNeverOrders(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := &mockBroker{}
	a, _ := newMockAllocator(b)

	b.On("GetAccount", ctx).Return(broker.Account{Balance: d("100000"), Equity: d("100000")}, nil)
	b.On("GetPrice", ctx, "X").Return(broker.Price{Instrument: "X", Close: d("10000.01")}, nil)

	out, err := a.Buy(ctx, "X", strategies.FastSlowCross)
	require.NoError(t, err)
	assert.Equal(t, ZeroQuantity, out)
	b.AssertNotCalled(t, "CreateMarketOrder", mock.Anything, mock.Anything)
}
