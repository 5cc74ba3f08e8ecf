package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/jbp-analytics/internal/contracts"
)

const planColumns = `
	id, supplier_id, COALESCE(title, ''), investment_value, COALESCE(investment_type, ''),
	start_date, end_date, expected_roi, sales_target, growth_target, goal_achievement, status
`

func scanPlan(row pgx.Row) (*contracts.InvestmentPlan, error) {
	var p contracts.InvestmentPlan
	var status string
	err := row.Scan(
		&p.ID, &p.SupplierID, &p.Title, &p.InvestmentValue, &p.InvestmentType,
		&p.StartDate, &p.EndDate, &p.ExpectedROI, &p.SalesTarget, &p.GrowthTarget, &p.GoalAchievement, &status,
	)
	if err != nil {
		return nil, err
	}
	p.Status = contracts.PlanStatus(status)
	return &p, nil
}

// GetPlan retrieves one plan of the tenant
func (g *Gateway) GetPlan(ctx context.Context, tenantID, planID string) (*contracts.InvestmentPlan, error) {
	query := `SELECT ` + planColumns + `
		FROM trade.jbp_plans
		WHERE tenant_id = $1 AND id = $2
	`

	p, err := scanPlan(g.q.QueryRow(ctx, query, tenantID, planID))
	if err != nil {
		if isNotFound(err) {
			return nil, contracts.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return p, nil
}

// ListRunningPlans retrieves approved and active plans of the tenant
func (g *Gateway) ListRunningPlans(ctx context.Context, tenantID string) ([]contracts.InvestmentPlan, error) {
	query := `SELECT ` + planColumns + `
		FROM trade.jbp_plans
		WHERE tenant_id = $1 AND status IN ('approved', 'active')
		ORDER BY id
	`

	rows, err := g.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list running plans: %w", err)
	}
	defer rows.Close()

	var plans []contracts.InvestmentPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

const salesColumns = `
	supplier_id, COALESCE(plan_id, ''), year, week, period_date, sales_amount, sales_quantity,
	average_ticket, growth_percentage, market_share, previous_sales_amount, department_sales_amount
`

func collectSales(rows pgx.Rows) ([]contracts.SalesPeriodRecord, error) {
	defer rows.Close()

	var out []contracts.SalesPeriodRecord
	for rows.Next() {
		var r contracts.SalesPeriodRecord
		if err := rows.Scan(
			&r.SupplierID, &r.PlanID, &r.Year, &r.Week, &r.PeriodDate, &r.SalesAmount, &r.Quantity,
			&r.AverageTicket, &r.GrowthPercentage, &r.MarketShare, &r.PreviousAmount, &r.DepartmentTotal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sales row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetSalesRows retrieves sales inside the window, oldest first
func (g *Gateway) GetSalesRows(ctx context.Context, tenantID, supplierID string, window contracts.DateRange) ([]contracts.SalesPeriodRecord, error) {
	query := `SELECT ` + salesColumns + `
		FROM trade.supplier_sales
		WHERE tenant_id = $1 AND supplier_id = $2 AND period_date BETWEEN $3 AND $4
		ORDER BY period_date ASC, year ASC, week ASC
	`

	rows, err := g.q.Query(ctx, query, tenantID, supplierID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales rows: %w", err)
	}
	return collectSales(rows)
}

// GetBaselineRows retrieves sales strictly before the date, most recent first
func (g *Gateway) GetBaselineRows(ctx context.Context, tenantID, supplierID string, before time.Time, limit int) ([]contracts.SalesPeriodRecord, error) {
	query := `SELECT ` + salesColumns + `
		FROM trade.supplier_sales
		WHERE tenant_id = $1 AND supplier_id = $2 AND period_date < $3
		ORDER BY period_date DESC, year DESC, week DESC
		LIMIT $4
	`

	rows, err := g.q.Query(ctx, query, tenantID, supplierID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get baseline rows: %w", err)
	}
	return collectSales(rows)
}

// GetRecentSales retrieves the latest sales, most recent first
func (g *Gateway) GetRecentSales(ctx context.Context, tenantID, supplierID string, limit int) ([]contracts.SalesPeriodRecord, error) {
	query := `SELECT ` + salesColumns + `
		FROM trade.supplier_sales
		WHERE tenant_id = $1 AND supplier_id = $2
		ORDER BY period_date DESC, year DESC, week DESC
		LIMIT $3
	`

	rows, err := g.q.Query(ctx, query, tenantID, supplierID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent sales: %w", err)
	}
	return collectSales(rows)
}
