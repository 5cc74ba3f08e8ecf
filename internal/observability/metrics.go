// Package observability provides Prometheus metrics for the analytics engine.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jbp_analytics"

var (
	// ROICalculations counts ROI snapshots by causality interpretation
	ROICalculations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "roi_calculations_total",
		Help:      "ROI snapshots computed, by causality interpretation",
	}, []string{"interpretation"})

	// InsightsGenerated counts rule matches by priority
	InsightsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "insights_generated_total",
		Help:      "Insight candidates produced by the rule engine, by priority",
	}, []string{"priority"})

	// ReportsGenerated counts supplier report attempts by outcome
	ReportsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_generated_total",
		Help:      "Supplier report generations, by outcome",
	}, []string{"outcome"})

	// ReportDuration observes end-to-end report latency
	ReportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "report_duration_seconds",
		Help:      "Latency of supplier report generation",
		Buckets:   prometheus.DefBuckets,
	})

	// RowsImported counts imported sales rows
	RowsImported = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_rows_total",
		Help:      "Sales rows imported from files",
	})

	// HTTPRequestDuration observes API latency by route and status
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of API requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)

// Register adds every collector to reg
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		ROICalculations,
		InsightsGenerated,
		ReportsGenerated,
		ReportDuration,
		RowsImported,
		HTTPRequestDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// Handler exposes the metrics of gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
