package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	tenantID string
	demo     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jbp",
	Short: "Supplier performance analytics for Joint Business Plans",
	Long: `JBP Analytics CLI

Measures the return of supplier trade investments, generates ranked insights
and positions suppliers against their market.

Usage:
  go run ./cmd/jbp [command]

Examples:
  go run ./cmd/jbp migrate
  go run ./cmd/jbp import sales.csv --tenant acme
  go run ./cmd/jbp report sup-1 --tenant acme
  go run ./cmd/jbp api
  go run ./cmd/jbp report sup-dairy-1 --demo`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tenantID, "tenant", "", "tenant to operate on")
	rootCmd.PersistentFlags().BoolVar(&demo, "demo", false, "use a seeded in-memory store instead of PostgreSQL")
}
