package contracts

import "time"

// BasicROI is plain return on investment under the fixed margin assumption
type BasicROI struct {
	Investment     float64  `json:"investment"`
	GrossReturn    float64  `json:"gross_return"`
	NetReturn      float64  `json:"net_return"`
	ROIPercentage  *float64 `json:"roi_percentage"`
	PaybackMonths  *float64 `json:"payback_months"`
	BreakevenPoint float64  `json:"breakeven_point"`
}

// IncrementalROI is the return attributed to sales above the organic baseline.
// Every field is nil when the evaluation window has no sales.
type IncrementalROI struct {
	OrganicGrowthRate     *float64 `json:"organic_growth_rate"` // percent
	ExpectedOrganicSales  *float64 `json:"expected_organic_sales"`
	IncrementalSales      *float64 `json:"incremental_sales"`
	IncrementalMargin     *float64 `json:"incremental_margin"`
	IncrementalROI        *float64 `json:"incremental_roi"`
	AttributionConfidence *float64 `json:"attribution_confidence,omitempty"`
}

// Causality levels
const (
	CausalityHigh         = "high"
	CausalityMedium       = "medium"
	CausalityLow          = "low"
	CausalityInsufficient = "insufficient_data"
)

// Causality is the heuristic likelihood that the sales lift came from the plan
type Causality struct {
	Score          *float64 `json:"score"`
	Interpretation string   `json:"interpretation"`
}

// Projection is the forward sales estimate at the plan's expected ROI
type Projection struct {
	ProjectedSales float64 `json:"projected_sales"`
	Confidence     float64 `json:"confidence"`
}

// ROIComputation is one append-only ROI snapshot for (tenant, supplier, plan, period).
// ⭐ SSOT: ROI 계산 결과
type ROIComputation struct {
	ID              string         `json:"id"`
	SupplierID      string         `json:"supplier_id"`
	PlanID          string         `json:"plan_id"`
	Period          DateRange      `json:"period"`
	Basic           BasicROI       `json:"basic_roi"`
	Incremental     IncrementalROI `json:"incremental_roi"`
	Causality       Causality      `json:"causality_confidence"`
	Projection      Projection     `json:"future_projection"`
	Recommendations []string       `json:"recommendations"`
	CalculatedAt    time.Time      `json:"calculated_at"`
}
