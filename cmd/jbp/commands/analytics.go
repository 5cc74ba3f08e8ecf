package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/jbp-analytics/internal/contracts"
	"github.com/wonny/jbp-analytics/internal/report"
)

var (
	reportCmd = &cobra.Command{
		Use:   "report [supplier_id]",
		Short: "Generate a supplier performance report",
		Long: `Builds the full performance report of a supplier: summary, trend,
JBP aggregate, product analysis, ranked insights and market comparison.

Insights produced by the report are stored.

Example:
  go run ./cmd/jbp report sup-1 --tenant acme
  go run ./cmd/jbp report sup-1 --tenant acme --plan plan-7
  go run ./cmd/jbp report sup-dairy-1 --demo`,
		Args: cobra.ExactArgs(1),
		RunE: runReport,
	}

	roiCmd = &cobra.Command{
		Use:   "roi [plan_id]",
		Short: "Compute an ROI snapshot for a plan",
		Long: `Computes basic and incremental ROI, causality confidence and the
projection of a JBP plan, and appends the snapshot.

Flags:
  --from   evaluation window start (YYYY-MM-DD, default: plan start)
  --to     evaluation window end (YYYY-MM-DD, default: plan end)

Example:
  go run ./cmd/jbp roi plan-7 --tenant acme
  go run ./cmd/jbp roi plan-dairy-1 --demo --from 2024-01-01 --to 2024-03-31`,
		Args: cobra.ExactArgs(1),
		RunE: runROI,
	}

	compareCmd = &cobra.Command{
		Use:   "compare [supplier_id]",
		Short: "Compare a supplier against its market",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompare,
	}

	insightsCmd = &cobra.Command{
		Use:   "insights [supplier_id]",
		Short: "List stored insights of a supplier",
		Long: `Lists the insights stored by earlier reports, newest first.

Example:
  go run ./cmd/jbp insights sup-1 --tenant acme --limit 5`,
		Args: cobra.ExactArgs(1),
		RunE: runInsights,
	}

	// Flags
	insightsLimit int
	reportPeriod  string
	reportPlan    string
	roiFrom       string
	roiTo         string
)

func init() {
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(roiCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(insightsCmd)

	reportCmd.Flags().StringVar(&reportPeriod, "period", report.DefaultPeriodLabel, "period label shown in the summary")
	reportCmd.Flags().StringVar(&reportPlan, "plan", "", "compute a fresh ROI snapshot for this plan")

	roiCmd.Flags().StringVar(&roiFrom, "from", "", "window start (YYYY-MM-DD)")
	roiCmd.Flags().StringVar(&roiTo, "to", "", "window end (YYYY-MM-DD)")

	insightsCmd.Flags().IntVar(&insightsLimit, "limit", contracts.InsightListLimit, "maximum number of insights")
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	if err := requireTenant(); err != nil {
		return err
	}

	ctx := context.Background()
	var rep *contracts.SupplierReport
	err = a.inTx(ctx, func(gw contracts.TxGateway) error {
		var err error
		rep, err = a.composer.Generate(ctx, gw, tenantID, args[0], report.Options{
			PeriodLabel: reportPeriod,
			PlanID:      reportPlan,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	return PrintJSON(rep)
}

func runROI(cmd *cobra.Command, args []string) error {
	period, err := parseWindow(roiFrom, roiTo)
	if err != nil {
		return err
	}

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	if err := requireTenant(); err != nil {
		return err
	}

	ctx := context.Background()
	var c *contracts.ROIComputation
	err = a.inTx(ctx, func(gw contracts.TxGateway) error {
		var err error
		c, err = a.calculator.Calculate(ctx, gw, tenantID, args[0], period)
		return err
	})
	if err != nil {
		return fmt.Errorf("calculate roi: %w", err)
	}

	PrintHeader("ROI Snapshot",
		[2]string{"Plan", c.PlanID},
		[2]string{"Supplier", c.SupplierID},
		[2]string{"Period", c.Period.Start.Format(dateLayout) + " ~ " + c.Period.End.Format(dateLayout)},
		[2]string{"ROI", formatPercent(c.Basic.ROIPercentage)},
		[2]string{"Incr. ROI", formatPercent(c.Incremental.IncrementalROI)},
		[2]string{"Causality", c.Causality.Interpretation},
	)
	return PrintJSON(c)
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	if err := requireTenant(); err != nil {
		return err
	}

	ctx := context.Background()
	var result *contracts.ComparisonResult
	err = a.inTx(ctx, func(gw contracts.TxGateway) error {
		var err error
		result, err = a.comparator.Compare(ctx, gw, tenantID, args[0])
		return err
	})
	if err != nil {
		return fmt.Errorf("compare supplier: %w", err)
	}

	return PrintJSON(result)
}

func runInsights(cmd *cobra.Command, args []string) error {
	if insightsLimit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	if err := requireTenant(); err != nil {
		return err
	}

	ctx := context.Background()
	var insights []contracts.InsightCandidate
	err = a.inTx(ctx, func(gw contracts.TxGateway) error {
		if _, err := gw.GetSupplier(ctx, tenantID, args[0]); err != nil {
			return err
		}
		var err error
		insights, err = gw.ListInsights(ctx, tenantID, args[0], insightsLimit)
		return err
	})
	if err != nil {
		return fmt.Errorf("list insights: %w", err)
	}

	PrintHeader("Stored Insights",
		[2]string{"Supplier", args[0]},
		[2]string{"Count", fmt.Sprintf("%d", len(insights))},
	)
	for _, c := range insights {
		fmt.Printf("  %s  %-9s %-28s %s\n", c.CreatedAt.Format(dateLayout), c.Priority, c.RuleID, c.Title)
	}
	return nil
}

const dateLayout = "2006-01-02"

// parseWindow reads the optional --from/--to pair; both or neither
func parseWindow(from, to string) (*contracts.DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("--from and --to must be given together")
	}

	start, err := time.Parse(dateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("invalid --from date: %w", err)
	}
	end, err := time.Parse(dateLayout, to)
	if err != nil {
		return nil, fmt.Errorf("invalid --to date: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("--to is before --from")
	}
	return &contracts.DateRange{Start: start, End: end}, nil
}
