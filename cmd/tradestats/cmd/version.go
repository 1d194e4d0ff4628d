package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the tradestats CLI.`,
	// Printing the version needs no config.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "tradestats version %s\n", version)
		fmt.Fprintln(out, "Performance analytics for a trading journal")
		fmt.Fprintln(out, "https://github.com/rustyeddy/tradestats")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
