package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/jbp-analytics/internal/insight"
	"github.com/wonny/jbp-analytics/pkg/logger"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules [file]",
	Short: "Validate an insight rule file",
	Long: `Loads and validates an insight rule table. Without a file the built-in
rules are checked. Prints every rule and the table hash, which changes
whenever a rule changes.

Example:
  go run ./cmd/jbp rules config/insight_rules.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	rules, err := insight.ResolveRules(path)
	if err != nil {
		return err
	}
	// NewEngine also compiles every message template
	if _, err := insight.NewEngine(rules, logger.Nop()); err != nil {
		return err
	}
	hash, err := insight.HashRules(rules)
	if err != nil {
		return err
	}

	source := path
	if source == "" {
		source = "built-in"
	}
	PrintHeader("Insight Rules",
		[2]string{"Source", source},
		[2]string{"Rules", fmt.Sprintf("%d", len(rules))},
		[2]string{"Hash", hash[:16]},
	)
	for _, r := range rules {
		fmt.Printf("  %-28s %-8s %s\n", r.ID, r.Priority, r.Category)
		for _, c := range r.Conditions {
			fmt.Printf("      when %s\n", c.String())
		}
	}
	PrintSuccess("Rule table is valid")
	return nil
}
