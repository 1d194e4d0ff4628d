package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradestats/analytics"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the report and its trades as JSON",
	Long: `Compute the report and write it together with the trades it was
computed from, as a single JSON document.

Examples:
  tradestats export -o report.json
  tradestats export --trades trades.csv > report.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var exportOutput string

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "output file, - for stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	trades, err := loadTrades(cmd.Context())
	if err != nil {
		return err
	}
	opts, err := computeOptions()
	if err != nil {
		return err
	}
	report, err := analytics.Compute(trades, cfg.Account.Balance, opts...)
	if err != nil {
		return fmt.Errorf("compute report: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "-" {
		fh, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create export: %w", err)
		}
		defer fh.Close()
		w = fh
	}

	if err := analytics.WriteExport(w, report, trades); err != nil {
		return err
	}
	if exportOutput != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d trades to %s\n", len(trades), exportOutput)
	}
	return nil
}
