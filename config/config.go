package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/smatrader/market"
	"github.com/rustyeddy/smatrader/risk"
	"github.com/rustyeddy/smatrader/strategies"
)

// Config represents the complete backtest configuration
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Market   MarketConfig   `json:"market" yaml:"market"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Metrics  MetricsConfig  `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// AccountConfig contains account initialization parameters
type AccountConfig struct {
	ID          string  `json:"id,omitempty" yaml:"id,omitempty"`
	Currency    string  `json:"currency" yaml:"currency"`
	InitialCash float64 `json:"initial_cash" yaml:"initial_cash"`
}

// StrategyConfig contains the moving-average windows and the allocation
// fraction every buy is sized with
type StrategyConfig struct {
	AllocationFraction float64 `json:"allocation_fraction" yaml:"allocation_fraction"`
	FastPeriod         int     `json:"fast_period" yaml:"fast_period"`
	SlowPeriod         int     `json:"slow_period" yaml:"slow_period"`

	// Enabled restricts the run to these strategies. Empty runs all three.
	Enabled []string `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// MarketConfig names the universe and where its daily bars live.
// Instruments are processed in the order listed.
type MarketConfig struct {
	DataDir     string   `json:"data_dir" yaml:"data_dir"`
	Instruments []string `json:"instruments" yaml:"instruments"`
	Start       string   `json:"start,omitempty" yaml:"start,omitempty"` // inclusive, YYYY-MM-DD
	End         string   `json:"end,omitempty" yaml:"end,omitempty"`     // exclusive, YYYY-MM-DD
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	CSVPath string `json:"csv_path" yaml:"csv_path"`
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	OrgPath string `json:"org_path,omitempty" yaml:"org_path,omitempty"`
}

// LogConfig selects the slog level and handler
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // text, json
}

// MetricsConfig controls the Prometheus textfile written after a run
type MetricsConfig struct {
	Textfile string `json:"textfile,omitempty" yaml:"textfile,omitempty"`
}

// Load reads path (or starts from Default when path is empty), applies
// environment overrides, and validates the result. A .env file in the
// working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = readFile(path); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	setDefaults(cfg)
	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	// Determine format by extension
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv("SMATRADER_OUTPUT"); v != "" {
		c.Journal.CSVPath = v
	}
	if v := os.Getenv("SMATRADER_DB"); v != "" {
		c.Journal.DBPath = v
	}
	if v := os.Getenv("SMATRADER_DATA_DIR"); v != "" {
		c.Market.DataDir = v
	}
	if v := os.Getenv("SMATRADER_METRICS"); v != "" {
		c.Metrics.Textfile = v
	}
	if v := os.Getenv("SMATRADER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SMATRADER_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

// setDefaults fills what a partial file leaves out. Dates are left alone:
// an empty bound means the whole file.
func setDefaults(c *Config) {
	def := Default()
	if c.Account.Currency == "" {
		c.Account.Currency = def.Account.Currency
	}
	if c.Strategy.AllocationFraction == 0 {
		c.Strategy.AllocationFraction = def.Strategy.AllocationFraction
	}
	if c.Strategy.FastPeriod == 0 {
		c.Strategy.FastPeriod = def.Strategy.FastPeriod
	}
	if c.Strategy.SlowPeriod == 0 {
		c.Strategy.SlowPeriod = def.Strategy.SlowPeriod
	}
	if c.Market.DataDir == "" {
		c.Market.DataDir = def.Market.DataDir
	}
	if len(c.Market.Instruments) == 0 {
		c.Market.Instruments = def.Market.Instruments
	}
	if c.Journal.CSVPath == "" {
		c.Journal.CSVPath = def.Journal.CSVPath
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.InitialCash <= 0 {
		return fmt.Errorf("account.initial_cash must be positive")
	}
	if c.Strategy.AllocationFraction <= 0 || c.Strategy.AllocationFraction > 1 {
		return fmt.Errorf("strategy.allocation_fraction must be in (0, 1]")
	}
	if c.Strategy.FastPeriod <= 0 {
		return fmt.Errorf("strategy.fast_period must be positive")
	}
	if c.Strategy.SlowPeriod <= 0 {
		return fmt.Errorf("strategy.slow_period must be positive")
	}
	if c.Strategy.FastPeriod >= c.Strategy.SlowPeriod {
		return fmt.Errorf("strategy.fast_period must be less than strategy.slow_period")
	}
	if _, err := c.Strategies(); err != nil {
		return fmt.Errorf("strategy.enabled: %w", err)
	}
	if c.Market.DataDir == "" {
		return fmt.Errorf("market.data_dir is required")
	}
	if len(c.Market.Instruments) == 0 {
		return fmt.Errorf("market.instruments is required")
	}
	seen := make(map[string]bool, len(c.Market.Instruments))
	for _, inst := range c.Market.Instruments {
		if strings.TrimSpace(inst) == "" {
			return fmt.Errorf("market.instruments contains an empty name")
		}
		if seen[inst] {
			return fmt.Errorf("duplicate instrument: %s", inst)
		}
		seen[inst] = true
	}
	start, err := c.StartTime()
	if err != nil {
		return fmt.Errorf("market.start: %w", err)
	}
	end, err := c.EndTime()
	if err != nil {
		return fmt.Errorf("market.end: %w", err)
	}
	if !start.IsZero() && !end.IsZero() && !end.After(start) {
		return fmt.Errorf("market.end must be after market.start")
	}
	if c.Journal.CSVPath == "" {
		return fmt.Errorf("journal.csv_path is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}
	return nil
}

// StartTime parses market.start. Empty means unbounded.
func (c *Config) StartTime() (time.Time, error) {
	return parseBound(c.Market.Start)
}

// EndTime parses market.end. Empty means unbounded.
func (c *Config) EndTime() (time.Time, error) {
	return parseBound(c.Market.End)
}

func parseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return market.ParseDate(s)
}

// Strategies resolves strategy.enabled. Nil means every strategy.
func (c *Config) Strategies() ([]strategies.ID, error) {
	if len(c.Strategy.Enabled) == 0 {
		return nil, nil
	}
	out := make([]strategies.ID, 0, len(c.Strategy.Enabled))
	seen := make(map[strategies.ID]bool, len(c.Strategy.Enabled))
	for _, name := range c.Strategy.Enabled {
		sid, err := strategies.Parse(name)
		if err != nil {
			return nil, err
		}
		if seen[sid] {
			return nil, fmt.Errorf("duplicate strategy: %s", sid)
		}
		seen[sid] = true
		out = append(out, sid)
	}
	return out, nil
}

// Policy returns the allocation policy of the strategy section.
func (c *Config) Policy() risk.Policy {
	return risk.Policy{AllocationFraction: decimal.NewFromFloat(c.Strategy.AllocationFraction)}
}

// Cash returns account.initial_cash as a decimal.
func (c *Config) Cash() decimal.Decimal {
	return decimal.NewFromFloat(c.Account.InitialCash)
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:          "SIM-001",
			Currency:    "USD",
			InitialCash: 100000,
		},
		Strategy: StrategyConfig{
			AllocationFraction: 0.10,
			FastPeriod:         10,
			SlowPeriod:         30,
		},
		Market: MarketConfig{
			DataDir:     "./data",
			Instruments: append([]string(nil), market.DefaultUniverse...),
			Start:       "2021-01-01",
			End:         "2021-12-31",
		},
		Journal: JournalConfig{
			CSVPath: "./output.csv",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
