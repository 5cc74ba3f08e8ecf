package postgres

import (
	"context"
	"fmt"

	"github.com/wonny/jbp-analytics/internal/contracts"
)

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// UpsertSupplier creates the supplier or refreshes its profile, accumulating total sales.
// Investment and average ROI are only taken from the first import.
func (g *Gateway) UpsertSupplier(ctx context.Context, tenantID string, s contracts.SupplierProfile, salesDelta float64) error {
	query := `
		INSERT INTO trade.suppliers (
			tenant_id, id, name, category, business_size, total_investment, total_sales, average_roi
		) VALUES ($1, $2, $3, COALESCE($4, $9), $5, $6, $7, $8)
		ON CONFLICT (tenant_id, id) DO UPDATE SET
			name = EXCLUDED.name,
			category = COALESCE($4, trade.suppliers.category),
			business_size = COALESCE(EXCLUDED.business_size, trade.suppliers.business_size),
			total_sales = trade.suppliers.total_sales + EXCLUDED.total_sales,
			updated_at = NOW()
	`

	_, err := g.q.Exec(ctx, query,
		tenantID, s.ID, s.Name, nullable(s.Category), nullable(s.BusinessSize),
		s.TotalInvestment, salesDelta, s.AverageROI, contracts.DefaultCategory,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert supplier: %w", err)
	}
	return nil
}

// UpsertSalesRecord replaces the week of the supplier, keeping a known plan link
func (g *Gateway) UpsertSalesRecord(ctx context.Context, tenantID string, r contracts.SalesPeriodRecord) error {
	query := `
		INSERT INTO trade.supplier_sales (
			tenant_id, supplier_id, plan_id, year, week, period_date, sales_amount, sales_quantity,
			average_ticket, growth_percentage, market_share, previous_sales_amount, department_sales_amount
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (tenant_id, supplier_id, year, week) DO UPDATE SET
			period_date = EXCLUDED.period_date,
			sales_amount = EXCLUDED.sales_amount,
			sales_quantity = EXCLUDED.sales_quantity,
			average_ticket = EXCLUDED.average_ticket,
			growth_percentage = EXCLUDED.growth_percentage,
			market_share = EXCLUDED.market_share,
			previous_sales_amount = EXCLUDED.previous_sales_amount,
			department_sales_amount = EXCLUDED.department_sales_amount,
			plan_id = COALESCE(EXCLUDED.plan_id, trade.supplier_sales.plan_id)
	`

	_, err := g.q.Exec(ctx, query,
		tenantID, r.SupplierID, nullable(r.PlanID), r.Year, r.Week, r.PeriodDate, r.SalesAmount, r.Quantity,
		r.AverageTicket, r.GrowthPercentage, r.MarketShare, r.PreviousAmount, r.DepartmentTotal,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert sales record: %w", err)
	}
	return nil
}

// UpsertProduct creates the product or refreshes its name, price and rotation figures
func (g *Gateway) UpsertProduct(ctx context.Context, tenantID string, p contracts.ImportedProduct) error {
	query := `
		INSERT INTO trade.supplier_products (
			tenant_id, id, supplier_id, sku_code, product_name, category, department,
			price, sell_through_rate, rotation_speed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tenant_id, id) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			price = EXCLUDED.price,
			sell_through_rate = EXCLUDED.sell_through_rate,
			rotation_speed = EXCLUDED.rotation_speed
	`

	_, err := g.q.Exec(ctx, query,
		tenantID, p.ID, p.SupplierID, p.SKU, p.Name, nullable(p.Category), nullable(p.Department),
		p.Price, p.SellThroughRate, nullable(p.RotationSpeed),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// AppendProductSales records a weekly product sale
func (g *Gateway) AppendProductSales(ctx context.Context, tenantID string, s contracts.ProductSale) error {
	query := `
		INSERT INTO trade.product_sales (
			tenant_id, product_id, supplier_id, year, week, sales_amount, sales_quantity, profit_margin
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := g.q.Exec(ctx, query,
		tenantID, s.ProductID, s.SupplierID, s.Year, s.Week, s.SalesAmount, s.SalesQuantity, s.ProfitMargin,
	)
	if err != nil {
		return fmt.Errorf("failed to append product sales: %w", err)
	}
	return nil
}

// AddPlan stores a plan
func (g *Gateway) AddPlan(ctx context.Context, tenantID string, p contracts.InvestmentPlan) error {
	query := `
		INSERT INTO trade.jbp_plans (
			tenant_id, id, supplier_id, title, investment_value, investment_type, start_date, end_date,
			expected_roi, sales_target, growth_target, goal_achievement, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := g.q.Exec(ctx, query,
		tenantID, p.ID, p.SupplierID, nullable(p.Title), p.InvestmentValue, nullable(p.InvestmentType),
		p.StartDate, p.EndDate, p.ExpectedROI, p.SalesTarget, p.GrowthTarget, p.GoalAchievement, string(p.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}
	return nil
}
