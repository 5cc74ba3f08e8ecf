package contracts

import "time"

// DefaultCategory is assigned to suppliers imported without a category
const DefaultCategory = "general"

// SupplierProfile is the storage layer's view of a supplier; read-only to analytics
type SupplierProfile struct {
	ID              string   `json:"id"`
	TenantID        string   `json:"tenant_id"`
	Name            string   `json:"name"`
	Category        string   `json:"category,omitempty"`
	BusinessSize    string   `json:"business_size,omitempty"` // small, medium, large
	TotalInvestment float64  `json:"total_investment"`
	TotalSales      float64  `json:"total_sales"`
	AverageROI      *float64 `json:"average_roi,omitempty"`
}

// SalesPeriodRecord is one imported weekly sales row.
// Unique per (supplier, year, week); never mutated by analytics.
type SalesPeriodRecord struct {
	SupplierID       string    `json:"supplier_id"`
	PlanID           string    `json:"plan_id,omitempty"`
	Year             int       `json:"year"`
	Week             int       `json:"week"`
	PeriodDate       time.Time `json:"period_date"`
	SalesAmount      float64   `json:"sales_amount"`
	Quantity         int       `json:"quantity"`
	AverageTicket    float64   `json:"average_ticket"`
	GrowthPercentage *float64  `json:"growth_percentage,omitempty"`
	MarketShare      *float64  `json:"market_share,omitempty"`
	PreviousAmount   float64   `json:"previous_amount"`
	DepartmentTotal  float64   `json:"department_total"`
}

// PlanStatus is the JBP lifecycle state
type PlanStatus string

const (
	PlanDraft     PlanStatus = "draft"
	PlanApproved  PlanStatus = "approved"
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
	PlanCancelled PlanStatus = "cancelled"
)

// InvestmentPlan is a Joint Business Plan (JBP): a funded trade investment
type InvestmentPlan struct {
	ID              string     `json:"id"`
	SupplierID      string     `json:"supplier_id"`
	Title           string     `json:"title,omitempty"`
	InvestmentValue float64    `json:"investment_value"`
	InvestmentType  string     `json:"investment_type,omitempty"` // cash, products, marketing
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	ExpectedROI     *float64   `json:"expected_roi,omitempty"`
	SalesTarget     *float64   `json:"sales_target,omitempty"`
	GrowthTarget    *float64   `json:"growth_target,omitempty"`
	GoalAchievement *float64   `json:"goal_achievement,omitempty"`
	Status          PlanStatus `json:"status"`
}

// IsRunning reports whether the plan counts as approved or active
func (p *InvestmentPlan) IsRunning() bool {
	return p.Status == PlanApproved || p.Status == PlanActive
}

// DateRange is an inclusive calendar window
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window (inclusive)
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// JBPAggregate summarises every plan of one supplier
type JBPAggregate struct {
	ActiveCount     int      `json:"active_jbp"`
	TotalInvestment float64  `json:"total_investment"`
	AverageROI      *float64 `json:"average_roi,omitempty"`
	GoalAchievement *float64 `json:"goal_achievement,omitempty"`
}

// ProductRow is a supplier product joined with its sales
type ProductRow struct {
	ProductID       string   `json:"product_id"`
	Name            string   `json:"name"`
	SalesAmount     float64  `json:"sales_amount"`
	SalesQuantity   int      `json:"sales_quantity"`
	ProfitMargin    *float64 `json:"profit_margin,omitempty"`
	RotationSpeed   string   `json:"rotation_speed,omitempty"`
	SellThroughRate *float64 `json:"sell_through_rate,omitempty"`
}

// SupplierAggregate is lifetime sales performance of one supplier
type SupplierAggregate struct {
	SupplierID  string  `json:"supplier_id"`
	Name        string  `json:"name"`
	Category    string  `json:"category,omitempty"`
	TotalSales  float64 `json:"total_sales"`
	Growth      float64 `json:"growth"`
	MarketShare float64 `json:"market_share"`
}

// MarketAverage is the mean performance of a category (or the whole tenant)
type MarketAverage struct {
	Category       string  `json:"category,omitempty"`
	AvgGrowth      float64 `json:"avg_growth"`
	AvgMarketShare float64 `json:"avg_market_share"`
	AvgSales       float64 `json:"avg_sales"`
}
