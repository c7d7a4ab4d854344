package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/smatrader/strategies"
)

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	trade := buyRecord("MSFT", 200, "100000")

	result := FormatTradeOrg(trade)

	assert.Contains(t, result, "** Compra MSFT 200 (FastSMACross)")
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":RUN_ID: 01HRUN0000000000000000TEST")
	assert.Contains(t, result, ":ID: 01HRUN00-1")
	assert.Contains(t, result, ":TIME: 2021-03-01T00:00:00Z")
	assert.Contains(t, result, ":QUANTITY: 200")
	assert.Contains(t, result, ":PRICE: 50.00")
	assert.Contains(t, result, ":PORTFOLIO_VALUE: 100000.00")
	assert.True(t, strings.HasSuffix(result, ":END:\n"))
}

func TestFormatTradeOrgWithoutAudit(t *testing.T) {
	t.Parallel()

	trade := buyRecord("X", 1, "10")
	trade.RunID = ""
	trade.Time = time.Time{}

	result := FormatTradeOrg(trade)
	assert.NotContains(t, result, ":RUN_ID:")
	assert.NotContains(t, result, ":TIME:")
}

func TestFormatTradesOrg(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", FormatTradesOrg(nil))

	a := buyRecord("A", 1, "10")
	b := buyRecord("B", 2, "10")
	out := FormatTradesOrg([]TradeRecord{a, b})
	assert.Equal(t, 2, strings.Count(out, ":PROPERTIES:"))
	assert.Less(t, strings.Index(out, "** Compra A"), strings.Index(out, "** Compra B"))
}

func TestFormatRunOrg(t *testing.T) {
	t.Parallel()

	run := testRun("RUN-ORG", time.Date(2026, 2, 3, 9, 30, 0, 0, time.UTC))
	run.Notes = []string{"TSLA dominated returns"}

	sell := buyRecord("GOOG", 4, "100100")
	sell.Action = strategies.Sell
	sell.Strategy = strategies.FastSlowCross

	out, err := FormatRunOrg(run, []TradeRecord{buyRecord("MSFT", 10, "100000"), sell})
	require.NoError(t, err)

	assert.Contains(t, out, "* BACKTEST: SMA-Cross MSFT, GOOG")
	assert.Contains(t, out, ":RUN_ID:       RUN-ORG")
	assert.Contains(t, out, ":START_DATE:   2021-01-01")
	assert.Contains(t, out, ":FINAL_VALUE:  104321.75")
	assert.Contains(t, out, ":NET_PL:       4321.75")
	assert.Contains(t, out, "[2026-02-03 Tue 09:30]")
	assert.Contains(t, out, "| Fast SMA          | 10 |")
	assert.Contains(t, out, "| FastSMACross | Valor de cierre vs SMA10 | 1 | 0 |")
	assert.Contains(t, out, "| FastSlowCross | Cruces de SMA10 y SMA30 | 0 | 1 |")
	assert.Contains(t, out, "- TSLA dominated returns")
	assert.Contains(t, out, "* TRADES")
	assert.Contains(t, out, "** Venta GOOG 4 (FastSlowCross)")
}

func TestWriteRunOrg(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.org")
	require.NoError(t, WriteRunOrg(path, testRun("RUN-W", time.Now()), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), ":RUN_ID:       RUN-W")
	assert.NotContains(t, string(data), "* TRADES")
}
