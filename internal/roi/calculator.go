package roi

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/jbp-analytics/internal/contracts"
	"github.com/wonny/jbp-analytics/internal/observability"
	"github.com/wonny/jbp-analytics/pkg/logger"
)

// Gateway is the data the calculator needs
type Gateway interface {
	contracts.PlanReader
	contracts.SalesReader
	contracts.SnapshotStore
}

// Calculator loads plan data, computes ROI and appends a snapshot
// ⭐ SSOT: ROI 계산은 여기서만
type Calculator struct {
	logger *logger.Logger
	now    func() time.Time
	newID  func() string
}

// NewCalculator creates a calculator using the wall clock
func NewCalculator(log *logger.Logger) *Calculator {
	return &Calculator{
		logger: log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// WithClock overrides the clock used for calculated_at
func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	c.now = now
	return c
}

// Calculate computes ROI for a plan over period, defaulting to the plan's own dates.
// Every call appends a new snapshot; repeated calls are not deduplicated.
func (c *Calculator) Calculate(ctx context.Context, gw Gateway, tenantID, planID string, period *contracts.DateRange) (*contracts.ROIComputation, error) {
	plan, err := gw.GetPlan(ctx, tenantID, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", planID, err)
	}

	window := contracts.DateRange{Start: plan.StartDate, End: plan.EndDate}
	if period != nil {
		window = *period
	}

	sales, err := gw.GetSalesRows(ctx, tenantID, plan.SupplierID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales for plan %s: %w", planID, err)
	}

	baseline, err := gw.GetBaselineRows(ctx, tenantID, plan.SupplierID, plan.StartDate, contracts.BaselineLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load baseline for plan %s: %w", planID, err)
	}

	result := Compute(*plan, sales, baseline, c.now())
	result.ID = c.newID()
	result.Period = window

	if err := gw.PersistROI(ctx, tenantID, &result); err != nil {
		return nil, fmt.Errorf("failed to persist roi snapshot: %w", err)
	}

	observability.ROICalculations.WithLabelValues(result.Causality.Interpretation).Inc()

	c.logger.WithTenant(tenantID).WithSupplier(plan.SupplierID).WithFields(map[string]interface{}{
		"plan_id":       planID,
		"sales_rows":    len(sales),
		"baseline_rows": len(baseline),
		"causality":     result.Causality.Interpretation,
	}).Info("ROI calculated")

	return &result, nil
}
