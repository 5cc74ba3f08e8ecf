package insight

import (
	"sort"

	"github.com/wonny/jbp-analytics/internal/contracts"
	"github.com/wonny/jbp-analytics/internal/numeric"
)

// DefaultTopInsights is the default length of a ranked list
const DefaultTopInsights = 5

var (
	priorityWeights = map[string]float64{
		contracts.PriorityCritical: 1.0,
		contracts.PriorityHigh:     0.8,
		contracts.PriorityMedium:   0.5,
		contracts.PriorityLow:      0.3,
	}
	impactWeights = map[string]float64{
		contracts.ImpactHigh:   1.0,
		contracts.ImpactMedium: 0.7,
		contracts.ImpactLow:    0.4,
	}
	urgencyWeights = map[string]float64{
		contracts.TimelineImmediate:  1.0,
		contracts.TimelineNext30Days: 0.8,
		contracts.TimelineNext90Days: 0.5,
	}
)

func weight(table map[string]float64, key string, fallback float64) float64 {
	if w, ok := table[key]; ok {
		return w
	}
	return fallback
}

// Ranker orders insight candidates by score
type Ranker struct {
	limit int
}

// NewRanker creates a ranker keeping at most limit candidates
func NewRanker(limit int) *Ranker {
	if limit <= 0 {
		limit = DefaultTopInsights
	}
	return &Ranker{limit: limit}
}

// Score is priority * confidence * impact * urgency, rounded to 3 decimals.
// A zero confidence counts as 0.5.
func Score(c contracts.InsightCandidate) float64 {
	confidence := c.Confidence
	if confidence == 0 {
		confidence = 0.5
	}
	return numeric.Round3(
		weight(priorityWeights, c.Priority, 0.3) *
			confidence *
			weight(impactWeights, c.ExpectedImpact, 0.5) *
			weight(urgencyWeights, c.Timeline, 0.6),
	)
}

// Rank scores copies of the candidates and returns the best, highest score first.
// Equal scores keep their input order.
func (r *Ranker) Rank(candidates []contracts.InsightCandidate) []contracts.InsightCandidate {
	ranked := make([]contracts.InsightCandidate, len(candidates))
	for i, c := range candidates {
		c.Score = numeric.Ptr(Score(c))
		ranked[i] = c
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Score > *ranked[j].Score
	})

	if len(ranked) > r.limit {
		ranked = ranked[:r.limit]
	}
	return ranked
}
