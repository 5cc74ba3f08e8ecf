package memory

import (
	"context"
	"sort"
	"time"

	"github.com/wonny/jbp-analytics/internal/contracts"
	"github.com/wonny/jbp-analytics/internal/numeric"
)

// txGateway reads through to the live data until a tenant is first written,
// then works on a staged copy of that tenant.
type txGateway struct {
	base   map[string]*tenantData
	staged map[string]*tenantData
}

var _ contracts.TxGateway = (*txGateway)(nil)

func (g *txGateway) read(tenantID string) *tenantData {
	if d, ok := g.staged[tenantID]; ok {
		return d
	}
	if d, ok := g.base[tenantID]; ok {
		return d
	}
	return newTenantData()
}

func (g *txGateway) write(tenantID string) *tenantData {
	if d, ok := g.staged[tenantID]; ok {
		return d
	}
	d := g.read(tenantID).clone()
	g.staged[tenantID] = d
	return d
}

// ----- PlanReader -----

func (g *txGateway) GetPlan(_ context.Context, tenantID, planID string) (*contracts.InvestmentPlan, error) {
	p, ok := g.read(tenantID).plans[planID]
	if !ok {
		return nil, contracts.ErrPlanNotFound
	}
	return &p, nil
}

func (g *txGateway) ListRunningPlans(_ context.Context, tenantID string) ([]contracts.InvestmentPlan, error) {
	var out []contracts.InvestmentPlan
	for _, p := range g.read(tenantID).plans {
		if p.IsRunning() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ----- SalesReader -----

func (g *txGateway) GetSalesRows(_ context.Context, tenantID, supplierID string, window contracts.DateRange) ([]contracts.SalesPeriodRecord, error) {
	var out []contracts.SalesPeriodRecord
	for _, r := range g.read(tenantID).sales[supplierID] {
		if window.Contains(truncateDay(r.PeriodDate)) {
			out = append(out, r)
		}
	}
	sortByPeriod(out)
	return out, nil
}

func (g *txGateway) GetBaselineRows(_ context.Context, tenantID, supplierID string, before time.Time, limit int) ([]contracts.SalesPeriodRecord, error) {
	var out []contracts.SalesPeriodRecord
	for _, r := range g.read(tenantID).sales[supplierID] {
		if r.PeriodDate.Before(before) {
			out = append(out, r)
		}
	}
	sortByPeriod(out)
	reverse(out)
	return limitRows(out, limit), nil
}

func (g *txGateway) GetRecentSales(_ context.Context, tenantID, supplierID string, limit int) ([]contracts.SalesPeriodRecord, error) {
	out := append([]contracts.SalesPeriodRecord(nil), g.read(tenantID).sales[supplierID]...)
	sortByPeriod(out)
	reverse(out)
	return limitRows(out, limit), nil
}

// ----- SupplierReader -----

func (g *txGateway) GetSupplier(_ context.Context, tenantID, supplierID string) (*contracts.SupplierProfile, error) {
	s, ok := g.read(tenantID).suppliers[supplierID]
	if !ok {
		return nil, contracts.ErrSupplierNotFound
	}
	return &s, nil
}

func (g *txGateway) GetJBPAggregate(_ context.Context, tenantID, supplierID string) (*contracts.JBPAggregate, error) {
	agg := &contracts.JBPAggregate{}
	var roi, goal []float64
	for _, p := range g.read(tenantID).plans {
		if p.SupplierID != supplierID {
			continue
		}
		if p.IsRunning() {
			agg.ActiveCount++
		}
		agg.TotalInvestment += p.InvestmentValue
		if p.ExpectedROI != nil {
			roi = append(roi, *p.ExpectedROI)
		}
		if p.GoalAchievement != nil {
			goal = append(goal, *p.GoalAchievement)
		}
	}
	agg.AverageROI = avgOrNil(roi)
	agg.GoalAchievement = avgOrNil(goal)
	return agg, nil
}

// GetProductRows yields one row per product sale, and a zero row for products never sold
func (g *txGateway) GetProductRows(_ context.Context, tenantID, supplierID string) ([]contracts.ProductRow, error) {
	d := g.read(tenantID)

	ids := make([]string, 0, len(d.products))
	for id, p := range d.products {
		if p.SupplierID == supplierID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var out []contracts.ProductRow
	for _, id := range ids {
		p := d.products[id]
		base := contracts.ProductRow{
			ProductID:       p.ID,
			Name:            p.Name,
			RotationSpeed:   p.RotationSpeed,
			SellThroughRate: p.SellThroughRate,
		}
		sold := false
		for _, s := range d.productSales {
			if s.ProductID != id {
				continue
			}
			row := base
			row.SalesAmount = s.SalesAmount
			row.SalesQuantity = s.SalesQuantity
			row.ProfitMargin = s.ProfitMargin
			out = append(out, row)
			sold = true
		}
		if !sold {
			out = append(out, base)
		}
	}
	return out, nil
}

// ----- MarketReader -----

func (g *txGateway) GetSupplierAggregate(_ context.Context, tenantID, supplierID string) (*contracts.SupplierAggregate, error) {
	d := g.read(tenantID)
	s, ok := d.suppliers[supplierID]
	if !ok {
		return nil, contracts.ErrSupplierNotFound
	}
	agg := aggregate(s, d.sales[s.ID])
	return &agg, nil
}

func (g *txGateway) GetMarketAverage(_ context.Context, tenantID, category string) (*contracts.MarketAverage, error) {
	d := g.read(tenantID)
	var growth, share, amounts []float64
	for _, s := range d.suppliers {
		if category != "" && s.Category != category {
			continue
		}
		for _, r := range d.sales[s.ID] {
			amounts = append(amounts, r.SalesAmount)
			if r.GrowthPercentage != nil {
				growth = append(growth, *r.GrowthPercentage)
			}
			if r.MarketShare != nil {
				share = append(share, *r.MarketShare)
			}
		}
	}
	return &contracts.MarketAverage{
		Category:       category,
		AvgGrowth:      numeric.Mean(growth),
		AvgMarketShare: numeric.Mean(share),
		AvgSales:       numeric.Mean(amounts),
	}, nil
}

func (g *txGateway) GetCompetitors(_ context.Context, tenantID, supplierID, category string, limit int) ([]contracts.SupplierAggregate, error) {
	d := g.read(tenantID)
	var out []contracts.SupplierAggregate
	for _, s := range d.suppliers {
		if s.ID == supplierID || (category != "" && s.Category != category) {
			continue
		}
		out = append(out, aggregate(s, d.sales[s.ID]))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSales != out[j].TotalSales {
			return out[i].TotalSales > out[j].TotalSales
		}
		return out[i].SupplierID < out[j].SupplierID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ----- SnapshotStore -----

func (g *txGateway) PersistROI(_ context.Context, tenantID string, computation *contracts.ROIComputation) error {
	d := g.write(tenantID)
	d.roi = append(d.roi, *computation)
	return nil
}

func (g *txGateway) LatestROI(_ context.Context, tenantID, supplierID string) (*contracts.ROIComputation, error) {
	rows := g.read(tenantID).roi
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].SupplierID == supplierID {
			r := rows[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (g *txGateway) PersistInsights(_ context.Context, tenantID, supplierID string, candidates []contracts.InsightCandidate) error {
	if len(candidates) == 0 {
		return nil
	}
	d := g.write(tenantID)
	d.insights[supplierID] = append(d.insights[supplierID], candidates...)
	return nil
}

func (g *txGateway) ListInsights(_ context.Context, tenantID, supplierID string, limit int) ([]contracts.InsightCandidate, error) {
	out := append([]contracts.InsightCandidate(nil), g.read(tenantID).insights[supplierID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ----- ImportWriter -----

func (g *txGateway) UpsertSupplier(_ context.Context, tenantID string, supplier contracts.SupplierProfile, salesDelta float64) error {
	d := g.write(tenantID)
	existing, ok := d.suppliers[supplier.ID]
	supplier.TenantID = tenantID
	if ok {
		// investment and ROI are only taken from the first import
		supplier.TotalSales = existing.TotalSales + salesDelta
		supplier.TotalInvestment = existing.TotalInvestment
		supplier.AverageROI = existing.AverageROI
		if supplier.Category == "" {
			supplier.Category = existing.Category
		}
		if supplier.BusinessSize == "" {
			supplier.BusinessSize = existing.BusinessSize
		}
	} else {
		supplier.TotalSales = salesDelta
		if supplier.Category == "" {
			supplier.Category = contracts.DefaultCategory
		}
	}
	d.suppliers[supplier.ID] = supplier
	return nil
}

func (g *txGateway) UpsertSalesRecord(_ context.Context, tenantID string, record contracts.SalesPeriodRecord) error {
	upsertSales(g.write(tenantID), record)
	return nil
}

func (g *txGateway) UpsertProduct(_ context.Context, tenantID string, product contracts.ImportedProduct) error {
	d := g.write(tenantID)
	if existing, ok := d.products[product.ID]; ok {
		existing.Name = product.Name
		existing.Price = product.Price
		existing.SellThroughRate = product.SellThroughRate
		existing.RotationSpeed = product.RotationSpeed
		product = existing
	}
	d.products[product.ID] = product
	return nil
}

func (g *txGateway) AppendProductSales(_ context.Context, tenantID string, sale contracts.ProductSale) error {
	d := g.write(tenantID)
	d.productSales = append(d.productSales, sale)
	return nil
}

func aggregate(s contracts.SupplierProfile, rows []contracts.SalesPeriodRecord) contracts.SupplierAggregate {
	agg := contracts.SupplierAggregate{SupplierID: s.ID, Name: s.Name, Category: s.Category}
	var growth, share []float64
	for _, r := range rows {
		agg.TotalSales += r.SalesAmount
		if r.GrowthPercentage != nil {
			growth = append(growth, *r.GrowthPercentage)
		}
		if r.MarketShare != nil {
			share = append(share, *r.MarketShare)
		}
	}
	agg.Growth = numeric.Mean(growth)
	agg.MarketShare = numeric.Mean(share)
	return agg
}

func avgOrNil(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := numeric.Mean(values)
	return &m
}
