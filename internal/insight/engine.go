package insight

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/jbp-analytics/internal/contracts"
	"github.com/wonny/jbp-analytics/internal/observability"
	"github.com/wonny/jbp-analytics/pkg/logger"
)

type compiledRule struct {
	Rule
	message *template.Template
}

// Engine evaluates a fixed rule table against a metrics context
// ⭐ SSOT: 인사이트 규칙 평가는 여기서만
type Engine struct {
	rules  []compiledRule
	logger *logger.Logger
	now    func() time.Time
	newID  func(ruleID string) string
}

// NewEngine validates and compiles the rule table
func NewEngine(rules []Rule, log *logger.Logger) (*Engine, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		tmpl, err := template.New(r.ID).Parse(r.Message)
		if err != nil {
			return nil, fmt.Errorf("failed to parse message of rule %s: %w", r.ID, err)
		}
		compiled = append(compiled, compiledRule{Rule: r, message: tmpl})
	}

	return &Engine{
		rules:  compiled,
		logger: log,
		now:    time.Now,
		newID:  newCandidateID,
	}, nil
}

// WithClock overrides the clock used for created_at/expires_at
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Rules returns the active rule table
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	for i, r := range e.rules {
		out[i] = r.Rule
	}
	return out
}

func newCandidateID(ruleID string) string {
	return ruleID + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Generate runs every rule and returns one candidate per match, in rule order.
// Rules are independent: a match never suppresses another rule.
func (e *Engine) Generate(m contracts.MetricsContext) ([]contracts.InsightCandidate, error) {
	createdAt := e.now()
	points := dataPoints(m)

	var out []contracts.InsightCandidate
	for _, r := range e.rules {
		if !r.Matches(m) {
			continue
		}

		var msg bytes.Buffer
		if err := r.message.Execute(&msg, m); err != nil {
			return nil, fmt.Errorf("failed to render message of rule %s: %w", r.ID, err)
		}

		out = append(out, contracts.InsightCandidate{
			ID:             e.newID(r.ID),
			RuleID:         r.ID,
			Type:           insightType(r.Category),
			Title:          title(r.Category),
			Message:        msg.String(),
			Action:         r.Action,
			Priority:       r.Priority,
			Confidence:     r.Confidence,
			DataPoints:     append([]string(nil), points...),
			ExpectedImpact: expectedImpact(r.Action),
			Timeline:       contracts.TimelineNext30Days,
			CreatedAt:      createdAt,
			ExpiresAt:      createdAt.Add(contracts.InsightValidity),
		})
	}
	return out, nil
}

// Evaluate generates candidates and persists the whole batch through the store
func (e *Engine) Evaluate(ctx context.Context, store contracts.SnapshotStore, tenantID, supplierID string, m contracts.MetricsContext) ([]contracts.InsightCandidate, error) {
	candidates, err := e.Generate(m)
	if err != nil {
		return nil, err
	}

	if err := store.PersistInsights(ctx, tenantID, supplierID, candidates); err != nil {
		return nil, fmt.Errorf("failed to persist insights: %w", err)
	}

	for _, c := range candidates {
		observability.InsightsGenerated.WithLabelValues(c.Priority).Inc()
	}

	e.logger.WithTenant(tenantID).WithSupplier(supplierID).WithFields(map[string]interface{}{
		"rules":   len(e.rules),
		"matched": len(candidates),
	}).Debug("Insight rules evaluated")

	return candidates, nil
}

func dataPoints(m contracts.MetricsContext) []string {
	return []string{
		fmt.Sprintf("ROI: %.1f%%", m.ROI),
		fmt.Sprintf("Market share: %.1f%%", m.MarketShare),
		fmt.Sprintf("Growth: %.1f%%", m.GrowthPercentage),
	}
}
