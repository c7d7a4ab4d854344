package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/smatrader/journal"
	"github.com/rustyeddy/smatrader/strategies"
)

func TestJournalTradesFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.csv")
	j, err := journal.NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(journal.TradeRecord{
		Instrument:     "MSFT",
		Action:         strategies.Buy,
		Quantity:       45,
		Strategy:       strategies.SlowSMACross,
		PortfolioValue: decimal.NewFromInt(100000),
	}))
	require.NoError(t, j.Close())

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	rootCmd.SetArgs([]string{"journal", "trades", "--csv", path, "--org=false"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	out := stdout.String()
	assert.Contains(t, out, "MSFT")
	assert.Contains(t, out, "Compra")
	assert.Contains(t, out, "SlowSMACross")
	assert.Contains(t, out, "100000.0")
}

func TestJournalTradesNeedsSource(t *testing.T) {
	rootCmd.SetArgs([]string{"journal", "trades", "--csv", "", "--org=false"})
	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a run id or --csv is required")
}
