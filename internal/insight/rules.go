// Package insight turns supplier metrics into ranked recommendations.
//
// Rules are plain data: each rule is a list of conditions over the metrics
// context, all of which must hold. One generic matcher evaluates every rule,
// so rule tables can be loaded from YAML and tested in isolation.
package insight

import (
	"fmt"

	"github.com/wonny/jbp-analytics/internal/contracts"
)

// Metric names a field of contracts.MetricsContext
type Metric string

const (
	MetricROI              Metric = "roi"
	MetricIncrementalROI   Metric = "incremental_roi"
	MetricProductGrowth    Metric = "product_growth"
	MetricMarketShare      Metric = "market_share"
	MetricGrowthPercentage Metric = "growth_percentage"
	MetricInvestmentLevel  Metric = "investment_level"
)

// Comparator is the predicate kind of a condition
type Comparator string

const (
	GreaterThan    Comparator = "gt"
	GreaterOrEqual Comparator = "gte"
	LessThan       Comparator = "lt"
	LessOrEqual    Comparator = "lte"
	Equal          Comparator = "eq"
	NotEqual       Comparator = "ne"
)

// Rule categories
const (
	CategoryInvestmentOpportunity = "investment_opportunity"
	CategoryProductOpportunity    = "product_opportunity"
	CategoryStrategicOpportunity  = "strategic_opportunity"
	CategoryRiskAlert             = "risk_alert"
)

// Condition compares one metric against a threshold.
// investment_level is compared as text against Value and only supports eq/ne.
type Condition struct {
	Metric     Metric     `yaml:"metric" json:"metric"`
	Comparator Comparator `yaml:"op" json:"op"`
	Threshold  float64    `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Value      string     `yaml:"value,omitempty" json:"value,omitempty"`
}

// Rule is an immutable insight rule. Message is a text/template rendered
// against the metrics context.
type Rule struct {
	ID         string      `yaml:"id" json:"id"`
	Category   string      `yaml:"category" json:"category"`
	Conditions []Condition `yaml:"when" json:"when"`
	Message    string      `yaml:"message" json:"message"`
	Action     string      `yaml:"action" json:"action"`
	Priority   string      `yaml:"priority" json:"priority"`
	Confidence float64     `yaml:"confidence" json:"confidence"`
}

// DefaultRules returns the built-in rule table, in evaluation order
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:       "high_roi_opportunity",
			Category: CategoryInvestmentOpportunity,
			Conditions: []Condition{
				{Metric: MetricROI, Comparator: GreaterThan, Threshold: 25},
				{Metric: MetricIncrementalROI, Comparator: GreaterThan, Threshold: 10},
			},
			Message:    `ROI of {{printf "%.1f" .ROI}}% is above expectations. Consider increasing the investment.`,
			Action:     "increase_investment",
			Priority:   contracts.PriorityHigh,
			Confidence: 0.85,
		},
		{
			ID:       "product_breakout",
			Category: CategoryProductOpportunity,
			Conditions: []Condition{
				{Metric: MetricProductGrowth, Comparator: GreaterThan, Threshold: 40},
			},
			Message:    "Product growing fast under low investment pressure. Immediate potential.",
			Action:     "scale_product_investment",
			Priority:   contracts.PriorityMedium,
			Confidence: 0.75,
		},
		{
			ID:       "market_share_opportunity",
			Category: CategoryStrategicOpportunity,
			Conditions: []Condition{
				{Metric: MetricGrowthPercentage, Comparator: GreaterThan, Threshold: 15},
				{Metric: MetricMarketShare, Comparator: LessThan, Threshold: 10},
			},
			Message:    "Growth above the market with a small share. Time to scale distribution.",
			Action:     "aggressive_growth",
			Priority:   contracts.PriorityHigh,
			Confidence: 0.80,
		},
		{
			ID:       "underperforming_investment",
			Category: CategoryRiskAlert,
			Conditions: []Condition{
				{Metric: MetricROI, Comparator: LessThan, Threshold: 5},
			},
			Message:    "ROI below 5%. Urgent review of the plan and its counter-parties.",
			Action:     "review_strategy",
			Priority:   contracts.PriorityCritical,
			Confidence: 0.90,
		},
	}
}

// Matches reports whether every condition holds. A rule without conditions never matches.
func (r Rule) Matches(m contracts.MetricsContext) bool {
	if len(r.Conditions) == 0 {
		return false
	}
	for _, c := range r.Conditions {
		if !c.Matches(m) {
			return false
		}
	}
	return true
}

// Matches evaluates the condition against the context
func (c Condition) Matches(m contracts.MetricsContext) bool {
	if c.Metric == MetricInvestmentLevel {
		switch c.Comparator {
		case Equal:
			return m.InvestmentLevel == c.Value
		case NotEqual:
			return m.InvestmentLevel != c.Value
		default:
			return false
		}
	}

	v, ok := metricValue(m, c.Metric)
	if !ok {
		return false
	}

	switch c.Comparator {
	case GreaterThan:
		return v > c.Threshold
	case GreaterOrEqual:
		return v >= c.Threshold
	case LessThan:
		return v < c.Threshold
	case LessOrEqual:
		return v <= c.Threshold
	case Equal:
		return v == c.Threshold
	case NotEqual:
		return v != c.Threshold
	default:
		return false
	}
}

func (c Condition) String() string {
	if c.Metric == MetricInvestmentLevel {
		return fmt.Sprintf("%s %s %q", c.Metric, c.Comparator, c.Value)
	}
	return fmt.Sprintf("%s %s %g", c.Metric, c.Comparator, c.Threshold)
}

func metricValue(m contracts.MetricsContext, metric Metric) (float64, bool) {
	switch metric {
	case MetricROI:
		return m.ROI, true
	case MetricIncrementalROI:
		return m.IncrementalROI, true
	case MetricProductGrowth:
		return m.ProductGrowth, true
	case MetricMarketShare:
		return m.MarketShare, true
	case MetricGrowthPercentage:
		return m.GrowthPercentage, true
	default:
		return 0, false
	}
}

// insightType maps a rule category to the candidate type
func insightType(category string) string {
	switch category {
	case CategoryInvestmentOpportunity, CategoryProductOpportunity:
		return contracts.InsightOpportunity
	case CategoryStrategicOpportunity:
		return contracts.InsightStrategic
	case CategoryRiskAlert:
		return contracts.InsightAlert
	default:
		return contracts.InsightInformation
	}
}

var titles = map[string]string{
	CategoryInvestmentOpportunity: "Investment opportunity",
	CategoryProductOpportunity:    "Product highlight",
	CategoryStrategicOpportunity:  "Strategic opportunity",
	CategoryRiskAlert:             "Performance alert",
}

func title(category string) string {
	if t, ok := titles[category]; ok {
		return t
	}
	return "Generated insight"
}

var impacts = map[string]string{
	"increase_investment":      contracts.ImpactHigh,
	"scale_product_investment": contracts.ImpactMedium,
	"aggressive_growth":        contracts.ImpactHigh,
	"review_strategy":          contracts.ImpactCritical,
}

// expectedImpact maps an action tag to its impact tier
func expectedImpact(action string) string {
	if i, ok := impacts[action]; ok {
		return i
	}
	return contracts.ImpactMedium
}
