// Package cli wires the splitledger commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "splitledger",
	Short: "Shared-expense ledger and settlement service",
	Long: `Splitledger tracks shared expenses, computes who owes whom,
and records settlements. All amounts are integer minor units.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (TOML)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
