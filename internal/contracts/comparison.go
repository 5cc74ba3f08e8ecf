package contracts

// Overall positioning labels
const (
	PositionLeader      = "leader"
	PositionCompetitive = "competitive"
	PositionDeveloping  = "developing"
)

// Positioning is a supplier's ranked standing against its competitors
type Positioning struct {
	ShareRank       int      `json:"market_share_ranking"`
	GrowthRank      int      `json:"growth_ranking"`
	OverallPosition string   `json:"overall_position"`
	Strengths       []string `json:"strengths"`
	Opportunities   []string `json:"opportunities"`
}

// ComparisonResult compares a supplier with its category market
type ComparisonResult struct {
	Supplier       SupplierAggregate   `json:"supplier_performance"`
	MarketAverage  MarketAverage       `json:"market_average"`
	TopCompetitors []SupplierAggregate `json:"top_competitors"`
	Positioning    Positioning         `json:"positioning"`
}
