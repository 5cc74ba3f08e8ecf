package postgres

import (
	"context"
	"fmt"

	"github.com/wonny/jbp-analytics/internal/contracts"
)

// GetSupplier retrieves a supplier profile
func (g *Gateway) GetSupplier(ctx context.Context, tenantID, supplierID string) (*contracts.SupplierProfile, error) {
	query := `
		SELECT id, tenant_id, name, COALESCE(category, ''), COALESCE(business_size, ''),
		       total_investment, total_sales, average_roi
		FROM trade.suppliers
		WHERE tenant_id = $1 AND id = $2
	`

	var s contracts.SupplierProfile
	err := g.q.QueryRow(ctx, query, tenantID, supplierID).Scan(
		&s.ID, &s.TenantID, &s.Name, &s.Category, &s.BusinessSize,
		&s.TotalInvestment, &s.TotalSales, &s.AverageROI,
	)
	if err != nil {
		if isNotFound(err) {
			return nil, contracts.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	return &s, nil
}

// GetJBPAggregate summarises every plan of the supplier
func (g *Gateway) GetJBPAggregate(ctx context.Context, tenantID, supplierID string) (*contracts.JBPAggregate, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('approved', 'active')),
			COALESCE(SUM(investment_value), 0),
			AVG(expected_roi),
			AVG(goal_achievement)
		FROM trade.jbp_plans
		WHERE tenant_id = $1 AND supplier_id = $2
	`

	var agg contracts.JBPAggregate
	err := g.q.QueryRow(ctx, query, tenantID, supplierID).Scan(
		&agg.ActiveCount, &agg.TotalInvestment, &agg.AverageROI, &agg.GoalAchievement,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get jbp aggregate: %w", err)
	}
	return &agg, nil
}

// GetProductRows retrieves one row per product sale; unsold products appear once with zero sales
func (g *Gateway) GetProductRows(ctx context.Context, tenantID, supplierID string) ([]contracts.ProductRow, error) {
	query := `
		SELECT sp.id, sp.product_name, COALESCE(sp.rotation_speed, ''), sp.sell_through_rate,
		       COALESCE(ps.sales_amount, 0), COALESCE(ps.sales_quantity, 0), ps.profit_margin
		FROM trade.supplier_products sp
		LEFT JOIN trade.product_sales ps ON ps.tenant_id = sp.tenant_id AND ps.product_id = sp.id
		WHERE sp.tenant_id = $1 AND sp.supplier_id = $2
		ORDER BY sp.id, ps.id
	`

	rows, err := g.q.Query(ctx, query, tenantID, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product rows: %w", err)
	}
	defer rows.Close()

	var out []contracts.ProductRow
	for rows.Next() {
		var r contracts.ProductRow
		if err := rows.Scan(
			&r.ProductID, &r.Name, &r.RotationSpeed, &r.SellThroughRate,
			&r.SalesAmount, &r.SalesQuantity, &r.ProfitMargin,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetSupplierAggregate retrieves lifetime sales performance of the supplier
func (g *Gateway) GetSupplierAggregate(ctx context.Context, tenantID, supplierID string) (*contracts.SupplierAggregate, error) {
	query := `
		SELECT s.id, s.name, COALESCE(s.category, ''),
		       COALESCE(SUM(ss.sales_amount), 0),
		       COALESCE(AVG(ss.growth_percentage), 0),
		       COALESCE(AVG(ss.market_share), 0)
		FROM trade.suppliers s
		LEFT JOIN trade.supplier_sales ss ON ss.tenant_id = s.tenant_id AND ss.supplier_id = s.id
		WHERE s.tenant_id = $1 AND s.id = $2
		GROUP BY s.id, s.name, s.category
	`

	var a contracts.SupplierAggregate
	err := g.q.QueryRow(ctx, query, tenantID, supplierID).Scan(
		&a.SupplierID, &a.Name, &a.Category, &a.TotalSales, &a.Growth, &a.MarketShare,
	)
	if err != nil {
		if isNotFound(err) {
			return nil, contracts.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to get supplier aggregate: %w", err)
	}
	return &a, nil
}

// GetMarketAverage averages weekly sales of the category, or of the whole tenant when category is empty
func (g *Gateway) GetMarketAverage(ctx context.Context, tenantID, category string) (*contracts.MarketAverage, error) {
	query := `
		SELECT COALESCE(AVG(ss.growth_percentage), 0),
		       COALESCE(AVG(ss.market_share), 0),
		       COALESCE(AVG(ss.sales_amount), 0)
		FROM trade.suppliers s
		JOIN trade.supplier_sales ss ON ss.tenant_id = s.tenant_id AND ss.supplier_id = s.id
		WHERE s.tenant_id = $1 AND ($2::text = '' OR s.category = $2::text)
	`

	m := contracts.MarketAverage{Category: category}
	err := g.q.QueryRow(ctx, query, tenantID, category).Scan(&m.AvgGrowth, &m.AvgMarketShare, &m.AvgSales)
	if err != nil {
		return nil, fmt.Errorf("failed to get market average: %w", err)
	}
	return &m, nil
}

// GetCompetitors retrieves the top suppliers by total sales, excluding supplierID
func (g *Gateway) GetCompetitors(ctx context.Context, tenantID, supplierID, category string, limit int) ([]contracts.SupplierAggregate, error) {
	query := `
		SELECT s.id, s.name, COALESCE(s.category, ''),
		       COALESCE(SUM(ss.sales_amount), 0) AS total_sales,
		       COALESCE(AVG(ss.growth_percentage), 0),
		       COALESCE(AVG(ss.market_share), 0)
		FROM trade.suppliers s
		LEFT JOIN trade.supplier_sales ss ON ss.tenant_id = s.tenant_id AND ss.supplier_id = s.id
		WHERE s.tenant_id = $1
		  AND s.id <> $2
		  AND ($3::text = '' OR s.category = $3::text)
		GROUP BY s.id, s.name, s.category
		ORDER BY total_sales DESC, s.id
		LIMIT $4
	`

	rows, err := g.q.Query(ctx, query, tenantID, supplierID, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get competitors: %w", err)
	}
	defer rows.Close()

	var out []contracts.SupplierAggregate
	for rows.Next() {
		var a contracts.SupplierAggregate
		if err := rows.Scan(&a.SupplierID, &a.Name, &a.Category, &a.TotalSales, &a.Growth, &a.MarketShare); err != nil {
			return nil, fmt.Errorf("failed to scan competitor: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
