package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradestats/analytics"
	"github.com/rustyeddy/tradestats/config"
	"github.com/rustyeddy/tradestats/internal/refresh"
	"github.com/rustyeddy/tradestats/journal"
	"github.com/rustyeddy/tradestats/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "tradestats",
	Short: "Performance analytics for a trading journal",
	Long: `Tradestats turns a trade journal into a performance report.

It provides tools for:
  - Equity curve and drawdown reconstruction
  - Risk-adjusted statistics (Sharpe, Sortino, Calmar, VaR)
  - Monthly, hourly, weekday and instrument breakdowns
  - Importing CSV trade logs into a SQLite journal
  - Serving the latest report over HTTP

Complete documentation is available at https://github.com/rustyeddy/tradestats`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	cfgFile   string
	logLevel  string
	dbPath    string
	tradesCSV string
	balance   float64

	cfg *config.Config
	log *logger.Logger
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults plus TRADESTATS_* env when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "read trades from this SQLite journal")
	rootCmd.PersistentFlags().StringVar(&tradesCSV, "trades", "", "read trades from this CSV file")
	rootCmd.PersistentFlags().Float64Var(&balance, "balance", 0, "override the account balance")
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if dbPath != "" {
		c.Journal.Type, c.Journal.DBPath = "sqlite", dbPath
	}
	if tradesCSV != "" {
		c.Journal.Type, c.Journal.TradesFile = "csv", tradesCSV
	}
	if cmd.Flags().Changed("balance") {
		c.Account.Balance = balance
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	l, err := logger.New(c.Log.Level, c.Log.Encoding)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	cfg, log = c, l
	return nil
}

// openSource returns the configured trade source and a func to release it.
func openSource() (refresh.TradeSource, func(), error) {
	switch cfg.Journal.Type {
	case "csv":
		return refresh.CSVSource{Path: cfg.Journal.TradesFile, Log: log}, func() {}, nil
	default:
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}
		return j, func() { _ = j.Close() }, nil
	}
}

func loadTrades(ctx context.Context) ([]analytics.Trade, error) {
	src, done, err := openSource()
	if err != nil {
		return nil, err
	}
	defer done()

	trades, err := src.ListTrades(ctx)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	return trades, nil
}

func computeOptions() ([]analytics.Option, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	opts := []analytics.Option{analytics.WithNow(time.Now)}
	if loc != nil {
		opts = append(opts, analytics.WithLocation(loc))
	}
	return opts, nil
}
