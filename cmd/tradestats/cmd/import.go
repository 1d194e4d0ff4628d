package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradestats/journal"
	"github.com/rustyeddy/tradestats/pkg/logger"
)

var importCmd = &cobra.Command{
	Use:   "import <trades.csv>",
	Short: "Import a CSV trade log into the SQLite journal",
	Long: `Read trades from CSV and upsert them into the SQLite journal.

Columns are matched by header name: trade_id, instrument, direction,
entry_price, stop_loss, take_profit, realized_pl, entry_time, close_time,
equity_before. Rows that fail validation are reported and skipped.

Example:
  tradestats import trades.csv --db ./tradestats.sqlite`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if cfg.Journal.DBPath == "" {
		return fmt.Errorf("import needs a SQLite journal: set --db or journal.db_path")
	}

	trades, rejected, err := journal.ReadCSVFile(args[0])
	if err != nil {
		return err
	}
	for _, rej := range rejected {
		log.Warn("rejected trade row",
			logger.StringField("file", args[0]),
			logger.IntField("line", rej.Line),
			logger.StringField("reason", rej.Reason),
		)
	}

	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	for _, t := range trades {
		if err := j.RecordTrade(t); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d trades into %s (%d rows rejected)\n", len(trades), cfg.Journal.DBPath, len(rejected))
	return nil
}
