package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/jbp-analytics/internal/contracts"
)

// calculationData holds the ROI blocks without a dedicated column
type calculationData struct {
	Projection      contracts.Projection `json:"projection"`
	Recommendations []string             `json:"recommendations"`
}

// PersistROI appends an ROI snapshot
func (g *Gateway) PersistROI(ctx context.Context, tenantID string, c *contracts.ROIComputation) error {
	basic, err := json.Marshal(c.Basic)
	if err != nil {
		return fmt.Errorf("failed to encode basic roi: %w", err)
	}
	incremental, err := json.Marshal(c.Incremental)
	if err != nil {
		return fmt.Errorf("failed to encode incremental roi: %w", err)
	}
	causality, err := json.Marshal(c.Causality)
	if err != nil {
		return fmt.Errorf("failed to encode causality: %w", err)
	}
	data, err := json.Marshal(calculationData{Projection: c.Projection, Recommendations: c.Recommendations})
	if err != nil {
		return fmt.Errorf("failed to encode calculation data: %w", err)
	}

	query := `
		INSERT INTO trade.roi_calculations (
			tenant_id, id, supplier_id, plan_id, period_start, period_end,
			basic_roi, incremental_roi, causality_confidence, calculation_data, calculated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = g.q.Exec(ctx, query,
		tenantID, c.ID, c.SupplierID, c.PlanID, c.Period.Start, c.Period.End,
		string(basic), string(incremental), string(causality), string(data), c.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert roi snapshot: %w", err)
	}
	return nil
}

// LatestROI retrieves the most recent snapshot of the supplier, nil when there is none
func (g *Gateway) LatestROI(ctx context.Context, tenantID, supplierID string) (*contracts.ROIComputation, error) {
	query := `
		SELECT id, supplier_id, plan_id, period_start, period_end,
		       basic_roi, incremental_roi, causality_confidence, calculation_data, calculated_at
		FROM trade.roi_calculations
		WHERE tenant_id = $1 AND supplier_id = $2
		ORDER BY calculated_at DESC, created_at DESC
		LIMIT 1
	`

	var (
		c                                  contracts.ROIComputation
		basic, incremental, causality, raw []byte
	)
	err := g.q.QueryRow(ctx, query, tenantID, supplierID).Scan(
		&c.ID, &c.SupplierID, &c.PlanID, &c.Period.Start, &c.Period.End,
		&basic, &incremental, &causality, &raw, &c.CalculatedAt,
	)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest roi snapshot: %w", err)
	}

	var data calculationData
	for _, part := range []struct {
		src []byte
		dst any
	}{
		{basic, &c.Basic},
		{incremental, &c.Incremental},
		{causality, &c.Causality},
		{raw, &data},
	} {
		if err := json.Unmarshal(part.src, part.dst); err != nil {
			return nil, fmt.Errorf("failed to decode roi snapshot %s: %w", c.ID, err)
		}
	}
	c.Projection = data.Projection
	c.Recommendations = data.Recommendations

	return &c, nil
}

// PersistInsights appends a batch of insights in one round trip
func (g *Gateway) PersistInsights(ctx context.Context, tenantID, supplierID string, candidates []contracts.InsightCandidate) error {
	if len(candidates) == 0 {
		return nil
	}

	query := `
		INSERT INTO trade.supplier_insights (
			tenant_id, id, supplier_id, rule_id, insight_type, title, message, action,
			priority, confidence, data_points, expected_impact, timeline, score, created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	batch := &pgx.Batch{}
	for _, c := range candidates {
		points, err := json.Marshal(c.DataPoints)
		if err != nil {
			return fmt.Errorf("failed to encode data points: %w", err)
		}
		batch.Queue(query,
			tenantID, c.ID, supplierID, c.RuleID, c.Type, c.Title, c.Message, c.Action,
			c.Priority, c.Confidence, string(points), c.ExpectedImpact, c.Timeline, c.Score, c.CreatedAt, c.ExpiresAt,
		)
	}

	br := g.q.SendBatch(ctx, batch)
	defer br.Close()

	for range candidates {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert insight: %w", err)
		}
	}
	return nil
}

// ListInsights retrieves persisted insights of a supplier, newest first
func (g *Gateway) ListInsights(ctx context.Context, tenantID, supplierID string, limit int) ([]contracts.InsightCandidate, error) {
	query := `
		SELECT id, rule_id, insight_type, title, message, action, priority, confidence,
		       data_points, expected_impact, timeline, score, created_at, expires_at
		FROM trade.supplier_insights
		WHERE tenant_id = $1 AND supplier_id = $2
		ORDER BY created_at DESC, id
		LIMIT $3
	`

	rows, err := g.q.Query(ctx, query, tenantID, supplierID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	defer rows.Close()

	var out []contracts.InsightCandidate
	for rows.Next() {
		var (
			c      contracts.InsightCandidate
			points []byte
		)
		if err := rows.Scan(
			&c.ID, &c.RuleID, &c.Type, &c.Title, &c.Message, &c.Action, &c.Priority, &c.Confidence,
			&points, &c.ExpectedImpact, &c.Timeline, &c.Score, &c.CreatedAt, &c.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		if err := json.Unmarshal(points, &c.DataPoints); err != nil {
			return nil, fmt.Errorf("failed to decode data points: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
