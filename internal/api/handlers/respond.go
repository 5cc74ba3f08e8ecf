package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/wonny/jbp-analytics/internal/contracts"
	"github.com/wonny/jbp-analytics/pkg/logger"
)

type tenantKey struct{}

// WithTenant stores the tenant of the request in ctx
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// TenantID returns the tenant stored by WithTenant
func TenantID(ctx context.Context) string {
	id, _ := ctx.Value(tenantKey{}).(string)
	return id
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondFailure maps analytics errors to 404 and hides everything else behind a 500
func respondFailure(w http.ResponseWriter, log *logger.Logger, err error, message string) {
	if contracts.IsNotFound(err) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	log.WithError(err).Error(message)
	respondError(w, http.StatusInternalServerError, message)
}
