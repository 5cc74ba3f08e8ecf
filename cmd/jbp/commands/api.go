package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/wonny/jbp-analytics/internal/api"
	"github.com/wonny/jbp-analytics/internal/api/handlers"
	"github.com/wonny/jbp-analytics/internal/observability"
	"github.com/wonny/jbp-analytics/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Starts the analytics REST API.

Every /api request must carry the X-Tenant-ID header.

Endpoints:
  GET  /health                                  - Health check
  GET  /api/suppliers/{supplierID}/report       - Supplier performance report
  GET  /api/suppliers/{supplierID}/comparison   - Market comparison
  GET  /api/suppliers/{supplierID}/insights     - Stored insights, newest first
  POST /api/plans/{planID}/roi                  - Compute an ROI snapshot
  GET  /metrics                                 - Prometheus metrics

Example:
  go run ./cmd/jbp api
  go run ./cmd/jbp api --port 9090
  go run ./cmd/jbp api --demo`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	log := a.log

	redisClient, err := redis.New(a.cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	var health *handlers.HealthHandler
	if a.db != nil {
		health = handlers.NewHealthHandler(a.db)
	} else {
		health = handlers.NewHealthHandler(nil)
	}

	deps := api.RouterDeps{
		Health:             health,
		Analytics:          handlers.NewAnalyticsHandler(a.store, a.composer, a.calculator, a.comparator, log),
		Limiter:            redis.NewRateLimiter(redisClient, "jbp"),
		RateLimitPerMinute: a.cfg.RateLimitPerMinute,
		Logger:             log,
	}

	if a.cfg.MetricsEnabled {
		if err := observability.Register(prometheus.DefaultRegisterer); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		deps.Metrics = observability.Handler(prometheus.DefaultGatherer)
	}

	server := api.New(a.cfg, log, api.NewRouter(deps))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
