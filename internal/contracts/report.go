package contracts

import "time"

// ReportSummary is the headline of a supplier report
type ReportSummary struct {
	SupplierName     string   `json:"supplier_name"`
	Period           string   `json:"period"`
	TotalSales       float64  `json:"total_sales"`
	GrowthPercentage *float64 `json:"growth_percentage"`
	MarketShare      *float64 `json:"market_share"`
}

// TrendPoint is one week of the sales trend, oldest first
type TrendPoint struct {
	Label           string  `json:"label"`
	SalesAmount     float64 `json:"sales_amount"`
	DepartmentTotal float64 `json:"department_total"`
}

// ProductPerformance is a product entry of the report's product analysis
type ProductPerformance struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	SalesAmount      float64  `json:"sales_amount"`
	GrowthPercentage *float64 `json:"growth_percentage"`
	InvestmentLevel  string   `json:"investment_level"`
	RotationSpeed    string   `json:"rotation_speed,omitempty"`
	GrowthPotential  *float64 `json:"growth_potential"`
}

// ProductAnalysis groups best, worst and high sell-through products
type ProductAnalysis struct {
	TopPerformers []ProductPerformance `json:"top_performers"`
	LowPerformers []ProductPerformance `json:"low_performers"`
	Opportunities []ProductPerformance `json:"opportunities"`
}

// SupplierReport is the immutable result of one report generation
// ⭐ SSOT: 공급사 성과 리포트
type SupplierReport struct {
	Supplier        SupplierProfile    `json:"supplier"`
	Summary         ReportSummary      `json:"summary"`
	Trend           []TrendPoint       `json:"trend"`
	JBPPerformance  JBPAggregate       `json:"jbp_performance"`
	ProductAnalysis ProductAnalysis    `json:"product_analysis"`
	Insights        []InsightCandidate `json:"insights"`
	Comparison      *ComparisonResult  `json:"comparison"`
	ROISnapshot     *ROIComputation    `json:"roi_snapshot"`
	GeneratedAt     time.Time          `json:"generated_at"`
}
