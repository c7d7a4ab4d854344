package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/smatrader/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query trade journal data",
	Long: `Query and display runs and trades from the SQLite journal, or trades
from a CSV journal.

Subcommands:
  runs   - List recorded runs, newest first
  trades - List the trades of a run
  show   - Print a run as an Org document

Examples:
  smatrader journal runs --db runs.db
  smatrader journal trades <run-id> --db runs.db
  smatrader journal trades --csv output.csv
  smatrader journal show <run-id> --db runs.db`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades [run-id]",
	Short: "List the trades of a run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJournalTrades,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a run and its trades as Org",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var (
	journalDBPath  string
	journalCSVPath string
	journalOrg     bool
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalShowCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./smatrader.db", "path to SQLite journal DB")
	journalTradesCmd.Flags().StringVar(&journalCSVPath, "csv", "", "read trades from a CSV journal instead of the DB")
	journalTradesCmd.Flags().BoolVar(&journalOrg, "org", false, "print trades as Org blocks")
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns(cmd.Context())
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Run ID", "Created", "Instruments", "Trades", "Final Value", "Return %")
	for _, r := range runs {
		err := table.Append(
			r.RunID,
			r.Created.Local().Format(time.DateTime),
			strings.Join(r.Instruments, ","),
			fmt.Sprintf("%d", r.Trades),
			r.FinalValue.StringFixed(2),
			r.ReturnPct().StringFixed(2),
		)
		if err != nil {
			return fmt.Errorf("render runs: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render runs: %w", err)
	}
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	var (
		recs []journal.TradeRecord
		err  error
	)

	switch {
	case journalCSVPath != "":
		recs, err = journal.ReadCSV(journalCSVPath)
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}
	case len(args) == 1:
		j, err := journal.NewSQLite(journalDBPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer j.Close()

		recs, err = j.ListTradesByRunID(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("query trades: %w", err)
		}
	default:
		return fmt.Errorf("a run id or --csv is required")
	}

	if journalOrg {
		fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
		return nil
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("#", "Empresa", "Operacion", "Cantidad", "Estrategia", "Valor portafolio")
	for _, r := range recs {
		err := table.Append(
			fmt.Sprintf("%d", r.Seq),
			r.Instrument,
			r.Operation(),
			fmt.Sprintf("%d", r.Quantity),
			r.Strategy.String(),
			journal.FormatValue(r.PortfolioValue),
		)
		if err != nil {
			return fmt.Errorf("render trades: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render trades: %w", err)
	}
	return nil
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	run, err := j.GetRun(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	recs, err := j.ListTradesByRunID(cmd.Context(), run.RunID)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	out, err := journal.FormatRunOrg(run, recs)
	if err != nil {
		return fmt.Errorf("format run: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
