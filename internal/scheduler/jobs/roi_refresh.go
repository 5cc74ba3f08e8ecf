// Package jobs holds the scheduled analytics jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/jbp-analytics/internal/contracts"
	"github.com/wonny/jbp-analytics/internal/roi"
	"github.com/wonny/jbp-analytics/pkg/logger"
)

// ROIRefreshJob appends a fresh ROI snapshot for every running plan of the configured tenants.
// A retried run appends again; snapshots are append-only.
type ROIRefreshJob struct {
	store      contracts.Store
	calculator *roi.Calculator
	tenants    []string
	schedule   string
	logger     *logger.Logger
}

// NewROIRefreshJob creates the refresh job
func NewROIRefreshJob(store contracts.Store, calculator *roi.Calculator, tenants []string, schedule string, log *logger.Logger) *ROIRefreshJob {
	return &ROIRefreshJob{
		store:      store,
		calculator: calculator,
		tenants:    tenants,
		schedule:   schedule,
		logger:     log,
	}
}

// Name returns the job name
func (j *ROIRefreshJob) Name() string {
	return "roi_refresh"
}

// Schedule returns the configured cron expression
func (j *ROIRefreshJob) Schedule() string {
	return j.schedule
}

// Run computes one snapshot per running plan. Each plan commits on its own,
// so one failing plan does not discard the others.
func (j *ROIRefreshJob) Run(ctx context.Context) error {
	if len(j.tenants) == 0 {
		j.logger.Debug("No tenants configured, skipping ROI refresh")
		return nil
	}

	var total, failed int
	for _, tenantID := range j.tenants {
		log := j.logger.WithTenant(tenantID)

		var plans []contracts.InvestmentPlan
		err := j.store.InTx(ctx, func(gw contracts.TxGateway) error {
			var err error
			plans, err = gw.ListRunningPlans(ctx, tenantID)
			return err
		})
		if err != nil {
			return fmt.Errorf("list running plans of %s: %w", tenantID, err)
		}

		for _, plan := range plans {
			if err := ctx.Err(); err != nil {
				return err
			}
			total++

			err := j.store.InTx(ctx, func(gw contracts.TxGateway) error {
				_, err := j.calculator.Calculate(ctx, gw, tenantID, plan.ID, nil)
				return err
			})
			if err != nil {
				failed++
				log.WithError(err).WithField("plan_id", plan.ID).Warn("ROI refresh failed")
			}
		}

		log.WithField("plans", len(plans)).Info("ROI snapshots refreshed")
	}

	if failed > 0 {
		j.logger.Warnf("ROI refresh: %d of %d plans failed", failed, total)
		return fmt.Errorf("roi refresh: %d of %d plans failed", failed, total)
	}
	return nil
}
