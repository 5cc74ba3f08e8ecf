package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/jbp-analytics/internal/api/handlers"
	"github.com/wonny/jbp-analytics/internal/comparison"
	"github.com/wonny/jbp-analytics/internal/contracts"
	"github.com/wonny/jbp-analytics/internal/insight"
	"github.com/wonny/jbp-analytics/internal/observability"
	"github.com/wonny/jbp-analytics/internal/report"
	"github.com/wonny/jbp-analytics/internal/roi"
	"github.com/wonny/jbp-analytics/internal/storage/memory"
	"github.com/wonny/jbp-analytics/pkg/database"
	"github.com/wonny/jbp-analytics/pkg/logger"
	"github.com/wonny/jbp-analytics/pkg/redis"
)

func f(v float64) *float64 { return &v }

func seedStore() *memory.Store {
	s := memory.New()
	s.AddSupplier("t1", contracts.SupplierProfile{ID: "sup-1", Name: "Acme", Category: "dairy"})
	s.AddSupplier("t1", contracts.SupplierProfile{ID: "sup-2", Name: "Bolt", Category: "dairy"})
	s.AddSupplier("t1", contracts.SupplierProfile{ID: "sup-empty", Name: "Empty", Category: "dairy"})

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for w := 1; w <= 8; w++ {
		s.AddSales("t1", contracts.SalesPeriodRecord{
			SupplierID: "sup-1", Year: 2024, Week: w, PeriodDate: first.AddDate(0, 0, 7*(w-1)),
			SalesAmount: 1000 + float64(w)*100, MarketShare: f(8), GrowthPercentage: f(4),
		})
	}
	s.AddSales("t1", contracts.SalesPeriodRecord{SupplierID: "sup-2", Year: 2024, Week: 1, PeriodDate: first, SalesAmount: 9000, MarketShare: f(30)})

	s.AddPlan("t1", contracts.InvestmentPlan{
		ID: "plan-1", SupplierID: "sup-1", InvestmentValue: 500,
		StartDate: first.AddDate(0, 0, 28), EndDate: first.AddDate(0, 0, 60),
		ExpectedROI: f(15), Status: contracts.PlanActive,
	})
	return s
}

type routerOption func(*RouterDeps)

func newTestRouter(t *testing.T, store contracts.Store, opts ...routerOption) http.Handler {
	t.Helper()
	log := logger.Nop()

	engine, err := insight.NewEngine(insight.DefaultRules(), log)
	require.NoError(t, err)

	calculator := roi.NewCalculator(log)
	comparator := comparison.NewComparator(log)
	composer := report.NewComposer(calculator, engine, insight.NewRanker(insight.DefaultTopInsights), comparator, log)

	deps := RouterDeps{
		Health:    handlers.NewHealthHandler(nil),
		Analytics: handlers.NewAnalyticsHandler(store, composer, calculator, comparator, log),
		Logger:    log,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return NewRouter(deps)
}

func do(t *testing.T, h http.Handler, method, target, tenant string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if tenant != "" {
		req.Header.Set(TenantHeader, tenant)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]interface{}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, memory.New())

	rec, body := do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "memory", body["database"])
}

type failingDB struct{}

func (failingDB) HealthCheck(context.Context) (*database.HealthStatus, error) {
	return &database.HealthStatus{Error: "connection refused"}, errors.New("connection refused")
}

func TestHealthDegraded(t *testing.T) {
	h := newTestRouter(t, memory.New(), func(d *RouterDeps) {
		d.Health = handlers.NewHealthHandler(failingDB{})
	})

	rec, body := do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body["status"])
}

func TestTenantHeaderRequired(t *testing.T) {
	h := newTestRouter(t, seedStore())

	rec, body := do(t, h, "GET", "/api/suppliers/sup-1/report", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing X-Tenant-ID header", body["error"])
}

func TestGetReport(t *testing.T) {
	store := seedStore()
	h := newTestRouter(t, store)

	rec, body := do(t, h, "GET", "/api/suppliers/sup-1/report?period_label=week_8", "t1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, "Acme", summary["supplier_name"])
	assert.Equal(t, "week_8", summary["period"])
	assert.NotNil(t, body["comparison"])
	assert.Nil(t, body["roi_snapshot"], "no snapshot stored yet")

	assert.NotEmpty(t, store.Insights("t1", "sup-1"), "insights are persisted with the report")
}

func TestGetReportWithPlan(t *testing.T) {
	store := seedStore()
	h := newTestRouter(t, store)

	rec, body := do(t, h, "GET", "/api/suppliers/sup-1/report?plan_id=plan-1", "t1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotNil(t, body["roi_snapshot"])
	assert.Len(t, store.ROISnapshots("t1"), 1)
}

func TestGetReportNotFound(t *testing.T) {
	h := newTestRouter(t, seedStore())

	tests := []struct {
		name   string
		target string
		tenant string
		want   string
	}{
		{"unknown supplier", "/api/suppliers/missing/report", "t1", contracts.ErrSupplierNotFound.Error()},
		{"other tenant", "/api/suppliers/sup-1/report", "t2", contracts.ErrSupplierNotFound.Error()},
		{"no sales", "/api/suppliers/sup-empty/report", "t1", contracts.ErrInsufficientData.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, h, "GET", tt.target, tt.tenant)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, body["error"], tt.want)
		})
	}
}

func TestGetComparison(t *testing.T) {
	h := newTestRouter(t, seedStore())

	rec, body := do(t, h, "GET", "/api/suppliers/sup-1/comparison", "t1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	competitors := body["top_competitors"].([]interface{})
	require.NotEmpty(t, competitors)
	assert.Equal(t, "sup-2", competitors[0].(map[string]interface{})["supplier_id"])

	rec, _ = do(t, h, "GET", "/api/suppliers/missing/comparison", "t1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListInsights(t *testing.T) {
	store := seedStore()
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	err := store.InTx(context.Background(), func(gw contracts.TxGateway) error {
		return gw.PersistInsights(context.Background(), "t1", "sup-1", []contracts.InsightCandidate{
			{ID: "roi_low_1", RuleID: "roi_low", CreatedAt: at},
			{ID: "roi_low_2", RuleID: "roi_low", CreatedAt: at.AddDate(0, 0, 7)},
		})
	})
	require.NoError(t, err)
	h := newTestRouter(t, store)

	rec, body := do(t, h, "GET", "/api/suppliers/sup-1/insights", "t1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(2), body["count"])
	insights := body["insights"].([]interface{})
	assert.Equal(t, "roi_low_2", insights[0].(map[string]interface{})["id"])

	rec, body = do(t, h, "GET", "/api/suppliers/sup-1/insights?limit=1", "t1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])

	rec, body = do(t, h, "GET", "/api/suppliers/sup-2/insights", "t1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["insights"])

	for _, target := range []string{
		"/api/suppliers/sup-1/insights?limit=0",
		"/api/suppliers/sup-1/insights?limit=500",
		"/api/suppliers/sup-1/insights?limit=ten",
	} {
		rec, _ = do(t, h, "GET", target, "t1")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}

	rec, _ = do(t, h, "GET", "/api/suppliers/missing/insights", "t1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCalculateROI(t *testing.T) {
	store := seedStore()
	h := newTestRouter(t, store)

	rec, body := do(t, h, "POST", "/api/plans/plan-1/roi", "t1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "plan-1", body["plan_id"])

	rec, body = do(t, h, "POST", "/api/plans/plan-1/roi?start=2024-01-01&end=2024-02-26", "t1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	period := body["period"].(map[string]interface{})
	assert.Equal(t, "2024-01-01T00:00:00Z", period["start"])

	assert.Len(t, store.ROISnapshots("t1"), 2)

	rec, _ = do(t, h, "POST", "/api/plans/missing/roi", "t1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCalculateROIValidatesPeriod(t *testing.T) {
	h := newTestRouter(t, seedStore())

	for _, target := range []string{
		"/api/plans/plan-1/roi?start=2024-01-01",
		"/api/plans/plan-1/roi?start=01/01/2024&end=2024-02-01",
		"/api/plans/plan-1/roi?start=2024-03-01&end=2024-02-01",
	} {
		rec, body := do(t, h, "POST", target, "t1")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, body["error"], "Invalid period")
	}
}

func TestRateLimit(t *testing.T) {
	limiter := redis.NewRateLimiter(nil, "test")
	h := newTestRouter(t, seedStore(), func(d *RouterDeps) {
		d.Limiter = limiter
		d.RateLimitPerMinute = 2
	})

	for i := 0; i < 2; i++ {
		rec, _ := do(t, h, "GET", "/api/suppliers/sup-1/comparison", "t1")
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec, body := do(t, h, "GET", "/api/suppliers/sup-1/comparison", "t1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Rate limit exceeded", body["error"])

	rec, _ = do(t, h, "GET", "/api/suppliers/sup-1/comparison", "t2")
	assert.Equal(t, http.StatusNotFound, rec.Code, "budget is per tenant")
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, observability.Register(reg))

	h := newTestRouter(t, seedStore(), func(d *RouterDeps) {
		d.Metrics = observability.Handler(reg)
	})

	do(t, h, "GET", "/api/suppliers/sup-1/comparison", "t1")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jbp_analytics_http_request_duration_seconds")
	assert.Contains(t, rec.Body.String(), `route="/api/suppliers/{supplierID}/comparison"`)
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
