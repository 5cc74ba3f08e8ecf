package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/jbp-analytics/internal/api/handlers"
	"github.com/wonny/jbp-analytics/pkg/logger"
	"github.com/wonny/jbp-analytics/pkg/redis"
)

// RouterDeps wires the handlers and middleware of the API
type RouterDeps struct {
	Health    *handlers.HealthHandler
	Analytics *handlers.AnalyticsHandler

	// Limiter enforces RateLimitPerMinute per tenant; nil disables rate limiting
	Limiter            *redis.RateLimiter
	RateLimitPerMinute int

	// Metrics is served on /metrics when set
	Metrics http.Handler

	Logger *logger.Logger
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(deps RouterDeps) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", deps.Health.Check).Methods("GET")
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(tenantMiddleware())
	if deps.Limiter != nil {
		api.Use(rateLimitMiddleware(deps.Limiter, deps.RateLimitPerMinute, deps.Logger))
	}

	// Supplier analytics
	api.HandleFunc("/suppliers/{supplierID}/report", deps.Analytics.GetReport).Methods("GET")
	api.HandleFunc("/suppliers/{supplierID}/comparison", deps.Analytics.GetComparison).Methods("GET")
	api.HandleFunc("/suppliers/{supplierID}/insights", deps.Analytics.ListInsights).Methods("GET")

	// Plans
	api.HandleFunc("/plans/{planID}/roi", deps.Analytics.CalculateROI).Methods("POST")

	r.Use(loggingMiddleware(deps.Logger))
	r.Use(recoveryMiddleware(deps.Logger))

	return r
}
