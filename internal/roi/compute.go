// Package roi computes return-on-investment metrics for JBP plans.
package roi

import (
	"time"

	"github.com/wonny/jbp-analytics/internal/contracts"
	"github.com/wonny/jbp-analytics/internal/numeric"
)

const (
	// MarginRate is the fixed margin assumed on gross sales
	MarginRate = 0.25
	// paybackMonthsPerPeriod spreads net return over a quarter
	paybackMonthsPerPeriod = 3

	organicGrowthWindow = 12
	attributionWindow   = 4
)

// Recommendation texts, in evaluation order
const (
	RecommendExpand        = "Current investment returns above average. Consider expanding the plan."
	RecommendReassess      = "Incremental ROI is below expectations. Reassess the plan's counter-parties."
	RecommendCommunication = "Causality evidence is weak. Improve how the plan is communicated at the point of sale."
	RecommendMonitor       = "Monitor results weekly."
)

// Compute derives every ROI block for a plan.
// sales must be ordered oldest first; baseline most recent first (as the gateway returns them).
// The result has no ID and is not persisted.
func Compute(plan contracts.InvestmentPlan, sales, baseline []contracts.SalesPeriodRecord, now time.Time) contracts.ROIComputation {
	basic := BasicROI(plan, sales)
	incremental := IncrementalROI(plan, sales, baseline)
	causality := Causality(plan, sales)

	return contracts.ROIComputation{
		SupplierID:      plan.SupplierID,
		PlanID:          plan.ID,
		Basic:           basic,
		Incremental:     incremental,
		Causality:       causality,
		Projection:      Project(plan, sales),
		Recommendations: Recommend(basic, incremental, causality),
		CalculatedAt:    now,
	}
}

func totalSales(rows []contracts.SalesPeriodRecord) float64 {
	var total float64
	for _, r := range rows {
		total += r.SalesAmount
	}
	return total
}

// BasicROI computes gross/net return, ROI percentage, payback and breakeven
func BasicROI(plan contracts.InvestmentPlan, sales []contracts.SalesPeriodRecord) contracts.BasicROI {
	investment := plan.InvestmentValue
	gross := totalSales(sales)
	net := gross * MarginRate

	var roiPct *float64
	if investment != 0 {
		roiPct = numeric.Ptr(numeric.Round2((net - investment) / investment * 100))
	}

	var payback *float64
	if p := numeric.Div(investment, net/paybackMonthsPerPeriod); p != nil && *p != 0 {
		payback = numeric.Ptr(numeric.Round(*p, 1))
	}

	return contracts.BasicROI{
		Investment:     numeric.Round2(investment),
		GrossReturn:    numeric.Round2(gross),
		NetReturn:      numeric.Round2(net),
		ROIPercentage:  roiPct,
		PaybackMonths:  payback,
		BreakevenPoint: numeric.Round2(investment - net),
	}
}

// IncrementalROI attributes sales above the extrapolated organic baseline to the plan
func IncrementalROI(plan contracts.InvestmentPlan, sales, baseline []contracts.SalesPeriodRecord) contracts.IncrementalROI {
	if len(sales) == 0 {
		return contracts.IncrementalROI{}
	}

	baselineAmounts := make([]float64, len(baseline))
	for i, r := range baseline {
		baselineAmounts[i] = r.SalesAmount
	}
	avgBaseline := numeric.Mean(baselineAmounts)

	growthRates := make([]float64, 0, organicGrowthWindow)
	for _, r := range head(baseline, organicGrowthWindow) {
		growthRates = append(growthRates, numeric.Deref(r.GrowthPercentage)/100)
	}
	organicGrowth := numeric.Mean(growthRates)

	expected := avgBaseline * (1 + organicGrowth)
	incrementalSales := totalSales(sales) - expected
	margin := incrementalSales * MarginRate

	var incrementalROI *float64
	if margin != 0 {
		if r := numeric.Div(margin, plan.InvestmentValue); r != nil {
			incrementalROI = numeric.Ptr(numeric.Round2(*r * 100))
		}
	}

	return contracts.IncrementalROI{
		OrganicGrowthRate:     numeric.Ptr(numeric.Round2(organicGrowth * 100)),
		ExpectedOrganicSales:  numeric.Ptr(numeric.Round2(expected)),
		IncrementalSales:      numeric.Ptr(numeric.Round2(incrementalSales)),
		IncrementalMargin:     numeric.Ptr(numeric.Round2(margin)),
		IncrementalROI:        incrementalROI,
		AttributionConfidence: numeric.Ptr(AttributionConfidence(sales, baseline)),
	}
}

// AttributionConfidence compares recent growth during the plan with recent growth before it
func AttributionConfidence(sales, baseline []contracts.SalesPeriodRecord) float64 {
	if len(sales) == 0 || len(baseline) == 0 {
		return 0.3
	}

	delta := meanGrowth(tail(sales, attributionWindow)) - meanGrowth(head(baseline, attributionWindow))
	switch {
	case delta > 20:
		return 0.9
	case delta > 10:
		return 0.7
	default:
		return 0.5
	}
}

// Causality scores how plausibly the latest lift belongs to the plan
func Causality(plan contracts.InvestmentPlan, sales []contracts.SalesPeriodRecord) contracts.Causality {
	if len(sales) == 0 {
		return contracts.Causality{Interpretation: contracts.CausalityInsufficient}
	}

	latest := sales[len(sales)-1]

	timing := 0.3
	if numeric.Deref(latest.GrowthPercentage) > 0 {
		timing = 0.9
	}
	market := 0.5
	if numeric.Deref(latest.MarketShare) >= numeric.Deref(plan.ExpectedROI)/2 {
		market = 0.8
	}

	score := numeric.Round2((timing + market) / 2)

	interpretation := contracts.CausalityLow
	switch {
	case score >= 0.75:
		interpretation = contracts.CausalityHigh
	case score >= 0.5:
		interpretation = contracts.CausalityMedium
	}

	return contracts.Causality{Score: numeric.Ptr(score), Interpretation: interpretation}
}

// Project extends evaluation sales by the plan's expected ROI
func Project(plan contracts.InvestmentPlan, sales []contracts.SalesPeriodRecord) contracts.Projection {
	confidence := 0.2
	if len(sales) > 0 {
		confidence = 0.65
	}
	return contracts.Projection{
		ProjectedSales: numeric.Round2(totalSales(sales) * (1 + numeric.Deref(plan.ExpectedROI)/100)),
		Confidence:     confidence,
	}
}

// Recommend lists every matching recommendation, or the weekly monitoring fallback.
// Missing values count as 0.
func Recommend(basic contracts.BasicROI, incremental contracts.IncrementalROI, causality contracts.Causality) []string {
	var out []string
	if numeric.Deref(basic.ROIPercentage) > 25 {
		out = append(out, RecommendExpand)
	}
	if numeric.Deref(incremental.IncrementalROI) < 5 {
		out = append(out, RecommendReassess)
	}
	if numeric.Deref(causality.Score) < 0.5 {
		out = append(out, RecommendCommunication)
	}
	if len(out) == 0 {
		return []string{RecommendMonitor}
	}
	return out
}

func meanGrowth(rows []contracts.SalesPeriodRecord) float64 {
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = numeric.Deref(r.GrowthPercentage)
	}
	return numeric.Mean(values)
}

func head(rows []contracts.SalesPeriodRecord, n int) []contracts.SalesPeriodRecord {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

func tail(rows []contracts.SalesPeriodRecord, n int) []contracts.SalesPeriodRecord {
	if len(rows) > n {
		return rows[len(rows)-n:]
	}
	return rows
}
