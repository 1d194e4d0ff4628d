package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradestats/analytics"
	"github.com/rustyeddy/tradestats/internal/console"
	"github.com/rustyeddy/tradestats/journal"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute and print a performance report",
	Long: `Compute a performance report from the configured journal.

Formats:
  table - human readable summary with breakdown tables (default)
  org   - Org-mode section for a trading journal
  json  - the full report as JSON

Examples:
  tradestats report --db ./tradestats.sqlite
  tradestats report --trades trades.csv --balance 25000 --format org
  tradestats report --from-export report.json`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

var (
	reportFormat     string
	reportFromExport string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "table", "output format: table|org|json")
	reportCmd.Flags().StringVar(&reportFromExport, "from-export", "", "print the report stored in an export file instead of recomputing")
}

func runReport(cmd *cobra.Command, args []string) error {
	var (
		report analytics.MetricsReport
		source string
	)

	if reportFromExport != "" {
		fh, err := os.Open(reportFromExport)
		if err != nil {
			return fmt.Errorf("open export: %w", err)
		}
		defer fh.Close()

		doc, err := analytics.ReadExport(fh)
		if err != nil {
			return err
		}
		report, source = doc.MetricsReport, reportFromExport
	} else {
		trades, err := loadTrades(cmd.Context())
		if err != nil {
			return err
		}
		opts, err := computeOptions()
		if err != nil {
			return err
		}
		report, err = analytics.Compute(trades, cfg.Account.Balance, opts...)
		if err != nil {
			return fmt.Errorf("compute report: %w", err)
		}
		source = journalName()
	}

	out := cmd.OutOrStdout()
	switch reportFormat {
	case "table":
		console.PrintReport(out, fmt.Sprintf("Performance Report: %s", cfg.Account.ID), report)
	case "org":
		s, err := journal.FormatReportOrg(report, journal.ReportMeta{
			AccountID: cfg.Account.ID,
			Currency:  cfg.Account.Currency,
			Source:    source,
			Generated: time.Now(),
		})
		if err != nil {
			return err
		}
		fmt.Fprint(out, s)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q (want table|org|json)", reportFormat)
	}
	return nil
}

func journalName() string {
	if cfg.Journal.Type == "csv" {
		return cfg.Journal.TradesFile
	}
	return cfg.Journal.DBPath
}
