package contracts

import "time"

// Insight types, derived from the rule category
const (
	InsightOpportunity = "opportunity"
	InsightStrategic   = "strategic"
	InsightAlert       = "alert"
	InsightInformation = "information"
)

// Priority, impact and timeline tiers
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"

	ImpactCritical = "critical"
	ImpactHigh     = "high"
	ImpactMedium   = "medium"
	ImpactLow      = "low"

	TimelineImmediate  = "immediate"
	TimelineNext30Days = "next_30_days"
	TimelineNext90Days = "next_90_days"
)

// InsightValidity is how long a persisted insight stays current
const InsightValidity = 30 * 24 * time.Hour

// InsightCandidate is a rule match turned into a recommendation.
// Score stays nil until the candidate is ranked.
type InsightCandidate struct {
	ID             string    `json:"id"`
	RuleID         string    `json:"rule_id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Action         string    `json:"action"`
	Priority       string    `json:"priority"`
	Confidence     float64   `json:"confidence"`
	DataPoints     []string  `json:"data_points"`
	ExpectedImpact string    `json:"expected_impact"`
	Timeline       string    `json:"timeline"`
	Score          *float64  `json:"score,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// MetricsContext is the vocabulary insight rules are evaluated against
type MetricsContext struct {
	ROI              float64 `json:"roi"`
	IncrementalROI   float64 `json:"incremental_roi"`
	ProductGrowth    float64 `json:"product_growth"`
	InvestmentLevel  string  `json:"investment_level"`
	MarketShare      float64 `json:"market_share"`
	GrowthPercentage float64 `json:"growth_percentage"`
}
