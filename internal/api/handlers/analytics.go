package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/wonny/jbp-analytics/internal/comparison"
	"github.com/wonny/jbp-analytics/internal/contracts"
	"github.com/wonny/jbp-analytics/internal/report"
	"github.com/wonny/jbp-analytics/internal/roi"
	"github.com/wonny/jbp-analytics/pkg/logger"
)

const dateLayout = "2006-01-02"

// AnalyticsHandler serves supplier reports, comparisons and ROI calculations.
// Every request runs in one store transaction.
// ⭐ SSOT: 분석 API 핸들러는 이 구조체에서만
type AnalyticsHandler struct {
	store      contracts.Store
	composer   *report.Composer
	calculator *roi.Calculator
	comparator *comparison.Comparator
	validate   *validator.Validate
	logger     *logger.Logger
}

// NewAnalyticsHandler creates the analytics handler
func NewAnalyticsHandler(
	store contracts.Store,
	composer *report.Composer,
	calculator *roi.Calculator,
	comparator *comparison.Comparator,
	log *logger.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		store:      store,
		composer:   composer,
		calculator: calculator,
		comparator: comparator,
		validate:   validator.New(),
		logger:     log,
	}
}

// reportQuery holds the report query string
type reportQuery struct {
	PeriodLabel string `validate:"omitempty,max=64"`
	PlanID      string `validate:"omitempty,max=128"`
}

// roiQuery holds the optional evaluation window; both bounds or neither
type roiQuery struct {
	Start string `validate:"required_with=End,omitempty,datetime=2006-01-02"`
	End   string `validate:"required_with=Start,omitempty,datetime=2006-01-02"`
}

// insightsQuery holds the page size of a stored insight listing
type insightsQuery struct {
	Limit int `validate:"min=1,max=100"`
}

// GetReport returns the performance report of a supplier
// GET /api/suppliers/{supplierID}/report?period_label=&plan_id=
func (h *AnalyticsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := TenantID(ctx)
	supplierID := mux.Vars(r)["supplierID"]

	q := reportQuery{
		PeriodLabel: r.URL.Query().Get("period_label"),
		PlanID:      r.URL.Query().Get("plan_id"),
	}
	if err := h.validate.Struct(q); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	var rep *contracts.SupplierReport
	err := h.store.InTx(ctx, func(gw contracts.TxGateway) error {
		var err error
		rep, err = h.composer.Generate(ctx, gw, tenantID, supplierID, report.Options{
			PeriodLabel: q.PeriodLabel,
			PlanID:      q.PlanID,
		})
		return err
	})
	if err != nil {
		respondFailure(w, h.logger.WithTenant(tenantID).WithSupplier(supplierID), err, "Failed to generate report")
		return
	}

	respondJSON(w, http.StatusOK, rep)
}

// GetComparison returns the market positioning of a supplier
// GET /api/suppliers/{supplierID}/comparison
func (h *AnalyticsHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := TenantID(ctx)
	supplierID := mux.Vars(r)["supplierID"]

	var result *contracts.ComparisonResult
	err := h.store.InTx(ctx, func(gw contracts.TxGateway) error {
		var err error
		result, err = h.comparator.Compare(ctx, gw, tenantID, supplierID)
		return err
	})
	if err != nil {
		respondFailure(w, h.logger.WithTenant(tenantID).WithSupplier(supplierID), err, "Failed to compare supplier")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// CalculateROI computes and stores a fresh ROI snapshot of a plan
// POST /api/plans/{planID}/roi?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *AnalyticsHandler) CalculateROI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := TenantID(ctx)
	planID := mux.Vars(r)["planID"]

	q := roiQuery{
		Start: r.URL.Query().Get("start"),
		End:   r.URL.Query().Get("end"),
	}
	if err := h.validate.Struct(q); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid period (expected start and end as YYYY-MM-DD)")
		return
	}

	var period *contracts.DateRange
	if q.Start != "" {
		start, _ := time.Parse(dateLayout, q.Start)
		end, _ := time.Parse(dateLayout, q.End)
		if end.Before(start) {
			respondError(w, http.StatusBadRequest, "Invalid period (end is before start)")
			return
		}
		period = &contracts.DateRange{Start: start, End: end}
	}

	var computation *contracts.ROIComputation
	err := h.store.InTx(ctx, func(gw contracts.TxGateway) error {
		var err error
		computation, err = h.calculator.Calculate(ctx, gw, tenantID, planID, period)
		return err
	})
	if err != nil {
		respondFailure(w, h.logger.WithTenant(tenantID).WithField("plan_id", planID), err, "Failed to calculate ROI")
		return
	}

	respondJSON(w, http.StatusCreated, computation)
}

// ListInsights returns the stored insights of a supplier, newest first
// GET /api/suppliers/{supplierID}/insights?limit=
func (h *AnalyticsHandler) ListInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := TenantID(ctx)
	supplierID := mux.Vars(r)["supplierID"]

	q := insightsQuery{Limit: contracts.InsightListLimit}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		q.Limit = limit
	}
	if err := h.validate.Struct(q); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid limit (expected 1-100)")
		return
	}

	var insights []contracts.InsightCandidate
	err := h.store.InTx(ctx, func(gw contracts.TxGateway) error {
		if _, err := gw.GetSupplier(ctx, tenantID, supplierID); err != nil {
			return err
		}
		var err error
		insights, err = gw.ListInsights(ctx, tenantID, supplierID, q.Limit)
		return err
	})
	if err != nil {
		respondFailure(w, h.logger.WithTenant(tenantID).WithSupplier(supplierID), err, "Failed to list insights")
		return
	}
	if insights == nil {
		insights = []contracts.InsightCandidate{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"supplier_id": supplierID,
		"count":       len(insights),
		"insights":    insights,
	})
}
