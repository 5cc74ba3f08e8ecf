// Package comparison positions a supplier against its category market.
package comparison

import (
	"context"
	"fmt"
	"sort"

	"github.com/wonny/jbp-analytics/internal/contracts"
	"github.com/wonny/jbp-analytics/pkg/logger"
)

// Narrative strings of the positioning block
const (
	StrengthShare     = "Market share above the category average"
	StrengthGrowth    = "Growing faster than the market"
	OpportunityShare  = "Room to gain share in the category"
	OpportunityGrowth = "Revisit strategy to accelerate growth"
)

// Comparator compares a supplier with its category peers
type Comparator struct {
	logger *logger.Logger
}

// NewComparator creates a comparator
func NewComparator(log *logger.Logger) *Comparator {
	return &Comparator{logger: log}
}

// Compare fetches the supplier, market and competitor aggregates and ranks the supplier.
// A supplier without a category is compared against every supplier of the tenant;
// with no peers at all there is nothing to compare and ErrInvalidComparisonCategory is returned.
func (c *Comparator) Compare(ctx context.Context, gw contracts.MarketReader, tenantID, supplierID string) (*contracts.ComparisonResult, error) {
	supplier, err := gw.GetSupplierAggregate(ctx, tenantID, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier aggregate: %w", err)
	}

	market, err := gw.GetMarketAverage(ctx, tenantID, supplier.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to load market average: %w", err)
	}

	competitors, err := gw.GetCompetitors(ctx, tenantID, supplierID, supplier.Category, contracts.CompetitorLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load competitors: %w", err)
	}

	if supplier.Category == "" && len(competitors) == 0 {
		return nil, contracts.ErrInvalidComparisonCategory
	}

	result := &contracts.ComparisonResult{
		Supplier:       *supplier,
		MarketAverage:  *market,
		TopCompetitors: competitors,
		Positioning:    Position(*supplier, *market, competitors),
	}
	if result.TopCompetitors == nil {
		result.TopCompetitors = []contracts.SupplierAggregate{}
	}

	c.logger.WithTenant(tenantID).WithSupplier(supplierID).WithFields(map[string]interface{}{
		"category":    supplier.Category,
		"competitors": len(competitors),
		"share_rank":  result.Positioning.ShareRank,
		"position":    result.Positioning.OverallPosition,
	}).Debug("Supplier compared with market")

	return result, nil
}

// Position ranks the supplier among its competitors on share and growth
func Position(supplier contracts.SupplierAggregate, market contracts.MarketAverage, competitors []contracts.SupplierAggregate) contracts.Positioning {
	shares := make([]float64, len(competitors))
	growths := make([]float64, len(competitors))
	for i, comp := range competitors {
		shares[i] = comp.MarketShare
		growths[i] = comp.Growth
	}

	p := contracts.Positioning{
		ShareRank:     Rank(supplier.MarketShare, shares),
		GrowthRank:    Rank(supplier.Growth, growths),
		Strengths:     []string{},
		Opportunities: []string{},
	}
	p.OverallPosition = Label(p.ShareRank)

	if supplier.MarketShare > market.AvgMarketShare {
		p.Strengths = append(p.Strengths, StrengthShare)
	} else {
		p.Opportunities = append(p.Opportunities, OpportunityShare)
	}

	if supplier.Growth > market.AvgGrowth {
		p.Strengths = append(p.Strengths, StrengthGrowth)
	} else {
		p.Opportunities = append(p.Opportunities, OpportunityGrowth)
	}

	return p
}

// Rank is the 1-based position of value among others sorted descending.
// Ties resolve to the first matching position, so a supplier tied with a
// competitor shares that competitor's rank.
func Rank(value float64, others []float64) int {
	all := append(append(make([]float64, 0, len(others)+1), others...), value)
	sort.Sort(sort.Reverse(sort.Float64Slice(all)))
	for i, v := range all {
		if v == value {
			return i + 1
		}
	}
	return len(all)
}

// Label maps a share rank to the overall position
func Label(shareRank int) string {
	switch {
	case shareRank <= 2:
		return contracts.PositionLeader
	case shareRank <= 4:
		return contracts.PositionCompetitive
	default:
		return contracts.PositionDeveloping
	}
}
