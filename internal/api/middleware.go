package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/jbp-analytics/internal/api/handlers"
	"github.com/wonny/jbp-analytics/internal/observability"
	"github.com/wonny/jbp-analytics/pkg/logger"
	"github.com/wonny/jbp-analytics/pkg/redis"
)

// TenantHeader carries the tenant of every /api request
const TenantHeader = "X-Tenant-ID"

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// routeTemplate labels metrics by route pattern rather than raw path
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// loggingMiddleware logs HTTP requests and records their latency
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			observability.HTTPRequestDuration.
				WithLabelValues(routeTemplate(r), r.Method, strconv.Itoa(rec.status)).
				Observe(duration.Seconds())

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"tenant":   r.Header.Get(TenantHeader),
				"duration": duration,
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					writeError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// tenantMiddleware rejects requests without a tenant and scopes the rest to it
func tenantMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := strings.TrimSpace(r.Header.Get(TenantHeader))
			if tenantID == "" {
				writeError(w, http.StatusBadRequest, "Missing "+TenantHeader+" header")
				return
			}
			next.ServeHTTP(w, r.WithContext(handlers.WithTenant(r.Context(), tenantID)))
		})
	}
}

// rateLimitMiddleware applies the per-tenant request budget.
// Limiter errors let the request through.
func rateLimitMiddleware(limiter *redis.RateLimiter, perMinute int, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := handlers.TenantID(r.Context())

			allowed, remaining, err := limiter.Allow(r.Context(), redis.TenantRateLimit(tenantID, perMinute))
			if err != nil {
				log.WithError(err).WithTenant(tenantID).Warn("Rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if remaining >= 0 {
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			}
			if !allowed {
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
