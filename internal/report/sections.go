package report

import (
	"fmt"
	"sort"

	"github.com/wonny/jbp-analytics/internal/contracts"
	"github.com/wonny/jbp-analytics/internal/numeric"
)

const (
	trendPoints        = 6
	productSectionSize = 3
	opportunityMinRate = 40
	defaultProductName = "Product"
	defaultInvestLevel = "medium"
)

// BuildSummary describes the latest week. rows are most recent first and not empty.
func BuildSummary(supplier contracts.SupplierProfile, rows []contracts.SalesPeriodRecord, periodLabel string) contracts.ReportSummary {
	current := rows[0]

	growth := current.GrowthPercentage
	if growth == nil && len(rows) > 1 {
		if g := numeric.Div(current.SalesAmount-rows[1].SalesAmount, rows[1].SalesAmount); g != nil {
			growth = numeric.Ptr(*g * 100)
		}
	}

	return contracts.ReportSummary{
		SupplierName:     supplier.Name,
		Period:           periodLabel,
		TotalSales:       numeric.Round2(current.SalesAmount),
		GrowthPercentage: numeric.RoundPtr(growth, 2),
		MarketShare:      numeric.RoundPtr(current.MarketShare, 2),
	}
}

// BuildTrend returns up to six weeks, oldest first. rows are most recent first.
func BuildTrend(rows []contracts.SalesPeriodRecord) []contracts.TrendPoint {
	n := len(rows)
	if n > trendPoints {
		n = trendPoints
	}

	points := make([]contracts.TrendPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		r := rows[i]
		points = append(points, contracts.TrendPoint{
			Label:           fmt.Sprintf("Week %d/%d", r.Week, r.Year),
			SalesAmount:     numeric.Round2(r.SalesAmount),
			DepartmentTotal: numeric.Round2(r.DepartmentTotal),
		})
	}
	return points
}

// BuildProductAnalysis picks the three best and worst sellers and up to three
// products selling through faster than 40%
func BuildProductAnalysis(rows []contracts.ProductRow) contracts.ProductAnalysis {
	bySales := append([]contracts.ProductRow(nil), rows...)
	sort.SliceStable(bySales, func(i, j int) bool { return bySales[i].SalesAmount > bySales[j].SalesAmount })

	ascending := append([]contracts.ProductRow(nil), rows...)
	sort.SliceStable(ascending, func(i, j int) bool { return ascending[i].SalesAmount < ascending[j].SalesAmount })

	var opportunities []contracts.ProductRow
	for _, r := range rows {
		if numeric.Deref(r.SellThroughRate) > opportunityMinRate {
			opportunities = append(opportunities, r)
		}
	}

	return contracts.ProductAnalysis{
		TopPerformers: mapProducts(firstN(bySales)),
		LowPerformers: mapProducts(firstN(ascending)),
		Opportunities: mapProducts(firstN(opportunities)),
	}
}

func firstN(rows []contracts.ProductRow) []contracts.ProductRow {
	if len(rows) > productSectionSize {
		return rows[:productSectionSize]
	}
	return rows
}

// mapProducts reports profit margin as the growth figure; product-level growth is not tracked
func mapProducts(rows []contracts.ProductRow) []contracts.ProductPerformance {
	out := make([]contracts.ProductPerformance, 0, len(rows))
	for _, r := range rows {
		name := r.Name
		if name == "" {
			name = defaultProductName
		}
		out = append(out, contracts.ProductPerformance{
			ID:               r.ProductID,
			Name:             name,
			SalesAmount:      numeric.Round2(r.SalesAmount),
			GrowthPercentage: r.ProfitMargin,
			InvestmentLevel:  defaultInvestLevel,
			RotationSpeed:    r.RotationSpeed,
			GrowthPotential:  r.SellThroughRate,
		})
	}
	return out
}

// BuildMetricsContext is the insight vocabulary for one report. Missing values count as 0.
func BuildMetricsContext(summary contracts.ReportSummary, products contracts.ProductAnalysis, snapshot *contracts.ROIComputation) contracts.MetricsContext {
	m := contracts.MetricsContext{
		InvestmentLevel:  defaultInvestLevel,
		MarketShare:      numeric.Deref(summary.MarketShare),
		GrowthPercentage: numeric.Deref(summary.GrowthPercentage),
	}

	if snapshot != nil {
		m.ROI = numeric.Deref(snapshot.Basic.ROIPercentage)
		m.IncrementalROI = numeric.Deref(snapshot.Incremental.IncrementalROI)
	}

	if len(products.TopPerformers) > 0 {
		top := products.TopPerformers[0]
		m.ProductGrowth = numeric.Deref(top.GrowthPercentage)
		m.InvestmentLevel = top.InvestmentLevel
	}

	return m
}
