// Package report assembles the supplier performance report.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/jbp-analytics/internal/comparison"
	"github.com/wonny/jbp-analytics/internal/contracts"
	"github.com/wonny/jbp-analytics/internal/insight"
	"github.com/wonny/jbp-analytics/internal/observability"
	"github.com/wonny/jbp-analytics/internal/roi"
	"github.com/wonny/jbp-analytics/pkg/logger"
)

// DefaultPeriodLabel is used when the caller does not name the period
const DefaultPeriodLabel = "current_week"

// Options tunes one report generation
type Options struct {
	// PeriodLabel is echoed in the summary
	PeriodLabel string
	// PlanID, when set, computes a fresh ROI snapshot for that plan instead of
	// reading the latest stored one
	PlanID string
}

// Composer orchestrates ROI, insights and market comparison into one report
// ⭐ SSOT: 리포트 조립은 여기서만
type Composer struct {
	calculator *roi.Calculator
	engine     *insight.Engine
	ranker     *insight.Ranker
	comparator *comparison.Comparator
	logger     *logger.Logger
	now        func() time.Time
}

// NewComposer creates a report composer
func NewComposer(
	calculator *roi.Calculator,
	engine *insight.Engine,
	ranker *insight.Ranker,
	comparator *comparison.Comparator,
	log *logger.Logger,
) *Composer {
	return &Composer{
		calculator: calculator,
		engine:     engine,
		ranker:     ranker,
		comparator: comparator,
		logger:     log,
		now:        time.Now,
	}
}

// WithClock overrides the clock used for generated_at
func (c *Composer) WithClock(now func() time.Time) *Composer {
	c.now = now
	return c
}

// Generate builds the report for one supplier. All writes go through gw, so the
// caller decides the transaction boundary.
func (c *Composer) Generate(ctx context.Context, gw contracts.Gateway, tenantID, supplierID string, opts Options) (*contracts.SupplierReport, error) {
	start := time.Now()
	report, err := c.generate(ctx, gw, tenantID, supplierID, opts)

	outcome := "success"
	switch {
	case err == nil:
		observability.ReportDuration.Observe(time.Since(start).Seconds())
	case contracts.IsNotFound(err):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	observability.ReportsGenerated.WithLabelValues(outcome).Inc()

	return report, err
}

func (c *Composer) generate(ctx context.Context, gw contracts.Gateway, tenantID, supplierID string, opts Options) (*contracts.SupplierReport, error) {
	log := c.logger.WithTenant(tenantID).WithSupplier(supplierID)

	supplier, err := gw.GetSupplier(ctx, tenantID, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier: %w", err)
	}

	rows, err := gw.GetRecentSales(ctx, tenantID, supplierID, contracts.RecentSalesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent sales: %w", err)
	}
	if len(rows) == 0 {
		return nil, contracts.ErrInsufficientData
	}

	if opts.PeriodLabel == "" {
		opts.PeriodLabel = DefaultPeriodLabel
	}
	summary := BuildSummary(*supplier, rows, opts.PeriodLabel)
	trend := BuildTrend(rows)

	jbp, err := gw.GetJBPAggregate(ctx, tenantID, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to load jbp aggregate: %w", err)
	}

	products, err := gw.GetProductRows(ctx, tenantID, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	productAnalysis := BuildProductAnalysis(products)

	snapshot, err := c.roiSnapshot(ctx, gw, tenantID, supplierID, opts.PlanID)
	if err != nil {
		return nil, err
	}

	metrics := BuildMetricsContext(summary, productAnalysis, snapshot)
	candidates, err := c.engine.Evaluate(ctx, gw, tenantID, supplierID, metrics)
	if err != nil {
		return nil, err
	}
	ranked := c.ranker.Rank(candidates)

	compared, err := c.comparator.Compare(ctx, gw, tenantID, supplierID)
	if err != nil {
		if !errors.Is(err, contracts.ErrInvalidComparisonCategory) {
			return nil, err
		}
		log.Debug("No peers to compare against, comparison omitted")
		compared = nil
	}

	report := &contracts.SupplierReport{
		Supplier:        *supplier,
		Summary:         summary,
		Trend:           trend,
		JBPPerformance:  *jbp,
		ProductAnalysis: productAnalysis,
		Insights:        ranked,
		Comparison:      compared,
		ROISnapshot:     snapshot,
		GeneratedAt:     c.now(),
	}

	log.WithFields(map[string]interface{}{
		"sales_rows": len(rows),
		"insights":   len(ranked),
		"has_roi":    snapshot != nil,
	}).Info("Supplier report generated")

	return report, nil
}

// roiSnapshot computes a fresh snapshot for planID, or reads the latest stored one
func (c *Composer) roiSnapshot(ctx context.Context, gw contracts.Gateway, tenantID, supplierID, planID string) (*contracts.ROIComputation, error) {
	if planID == "" {
		snapshot, err := gw.LatestROI(ctx, tenantID, supplierID)
		if err != nil {
			return nil, fmt.Errorf("failed to load roi snapshot: %w", err)
		}
		return snapshot, nil
	}

	plan, err := gw.GetPlan(ctx, tenantID, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", planID, err)
	}
	if plan.SupplierID != supplierID {
		return nil, fmt.Errorf("plan %s belongs to another supplier: %w", planID, contracts.ErrPlanNotFound)
	}

	return c.calculator.Calculate(ctx, gw, tenantID, planID, nil)
}
