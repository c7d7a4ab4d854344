package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/smatrader/backtest"
	"github.com/rustyeddy/smatrader/config"
	"github.com/rustyeddy/smatrader/journal"
	"github.com/rustyeddy/smatrader/market"
	"github.com/rustyeddy/smatrader/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the backtest",
	Long: `Run the three SMA crossover strategies over every configured instrument.

Bars are read from <data_dir>/<SYMBOL>.csv (Date,Open,High,Low,Close,Adj Close,Volume).
Every executed trade is appended to the CSV journal as it happens.

Examples:
  smatrader run
  smatrader run -c backtest.yaml --output trades.csv --db runs.db --org run.org
  smatrader run --metrics /var/lib/node_exporter/smatrader.prom
  smatrader run --instruments MSFT,TSLA --start 2021-01-01 --end 2022-01-01
  smatrader run --strategies fast-slow-cross`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runOutput      string
	runDB          string
	runOrg         string
	runMetrics     string
	runDataDir     string
	runInstruments []string
	runStrategies  []string
	runStart       string
	runEnd         string
	runCash        float64
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "CSV journal path (overrides journal.csv_path)")
	runCmd.Flags().StringVar(&runDB, "db", "", "SQLite journal path (overrides journal.db_path)")
	runCmd.Flags().StringVar(&runOrg, "org", "", "write an Org report of the run to this path")
	runCmd.Flags().StringVar(&runMetrics, "metrics", "", "write Prometheus textfile metrics to this path")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "", "directory of <SYMBOL>.csv files (overrides market.data_dir)")
	runCmd.Flags().StringSliceVar(&runInstruments, "instruments", nil, "comma separated instruments, in processing order")
	runCmd.Flags().StringSliceVar(&runStrategies, "strategies", nil, "comma separated strategies to run (default all)")
	runCmd.Flags().StringVar(&runStart, "start", "", "first day, inclusive (YYYY-MM-DD)")
	runCmd.Flags().StringVar(&runEnd, "end", "", "last day, exclusive (YYYY-MM-DD)")
	runCmd.Flags().Float64Var(&runCash, "cash", 0, "initial cash (overrides account.initial_cash)")
}

func applyRunFlags(cfg *config.Config) error {
	if runOutput != "" {
		cfg.Journal.CSVPath = runOutput
	}
	if runDB != "" {
		cfg.Journal.DBPath = runDB
	}
	if runOrg != "" {
		cfg.Journal.OrgPath = runOrg
	}
	if runMetrics != "" {
		cfg.Metrics.Textfile = runMetrics
	}
	if runDataDir != "" {
		cfg.Market.DataDir = runDataDir
	}
	if len(runInstruments) > 0 {
		cfg.Market.Instruments = nil
		for _, s := range runInstruments {
			cfg.Market.Instruments = append(cfg.Market.Instruments, strings.ToUpper(strings.TrimSpace(s)))
		}
	}
	if len(runStrategies) > 0 {
		cfg.Strategy.Enabled = runStrategies
	}
	if runStart != "" {
		cfg.Market.Start = runStart
	}
	if runEnd != "" {
		cfg.Market.End = runEnd
	}
	if runCash != 0 {
		cfg.Account.InitialCash = runCash
	}
	return cfg.Validate()
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyRunFlags(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	from, _ := cfg.StartTime()
	to, _ := cfg.EndTime()
	series, err := market.LoadUniverse(cfg.Market.DataDir, cfg.Market.Instruments, from, to)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	for _, s := range series {
		slog.Debug("series loaded", "instrument", s.Instrument, "bars", s.Len(), "source", s.Source)
	}

	csvj, err := journal.NewCSV(cfg.Journal.CSVPath)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	mem := journal.NewMemory()
	sinks := []journal.Journal{csvj, mem}

	var db *journal.SQLite
	if cfg.Journal.DBPath != "" {
		if db, err = journal.NewSQLite(cfg.Journal.DBPath); err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
		sinks = append(sinks, db)
	}
	j := journal.NewMulti(sinks...)

	enabled, err := cfg.Strategies()
	if err != nil {
		return err
	}

	drv, err := backtest.NewDriver(backtest.Config{
		Series:      series,
		Strategies:  enabled,
		FastPeriod:  cfg.Strategy.FastPeriod,
		SlowPeriod:  cfg.Strategy.SlowPeriod,
		Policy:      cfg.Policy(),
		InitialCash: cfg.Cash(),
		Journal:     j,
	})
	if err != nil {
		return err
	}

	res, runErr := drv.Run(cmd.Context())
	if runErr != nil {
		return fmt.Errorf("run %s: %w", drv.RunID(), runErr)
	}

	run := res.Run()
	run.Created = time.Now().UTC()
	run.Dataset = cfg.Market.DataDir
	run.CSVPath = cfg.Journal.CSVPath
	run.OrgPath = cfg.Journal.OrgPath
	if !from.IsZero() {
		run.Start = from
	}
	if !to.IsZero() {
		run.End = to
	}

	var errs []error
	if db != nil {
		if err := db.RecordRun(cmd.Context(), run); err != nil {
			errs = append(errs, fmt.Errorf("record run: %w", err))
		}
	}
	if cfg.Journal.OrgPath != "" {
		if err := journal.WriteRunOrg(cfg.Journal.OrgPath, run, mem.Records()); err != nil {
			errs = append(errs, fmt.Errorf("write org: %w", err))
		}
	}
	if cfg.Metrics.Textfile != "" {
		rec := metrics.New()
		rec.Observe(res)
		if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if err := j.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close journal: %w", err))
	}

	w := cmd.OutOrStdout()
	if err := backtest.PrintResult(w, res); err != nil {
		errs = append(errs, fmt.Errorf("print result: %w", err))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "✓ Journal written: %s (%d trades)\n", cfg.Journal.CSVPath, csvj.Rows())
	if db != nil {
		fmt.Fprintf(w, "✓ Run recorded: %s in %s\n", run.RunID, cfg.Journal.DBPath)
	}
	if cfg.Journal.OrgPath != "" {
		fmt.Fprintf(w, "✓ Org report: %s\n", cfg.Journal.OrgPath)
	}
	return errors.Join(errs...)
}
