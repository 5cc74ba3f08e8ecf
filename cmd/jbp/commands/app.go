package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/jbp-analytics/internal/comparison"
	"github.com/wonny/jbp-analytics/internal/contracts"
	"github.com/wonny/jbp-analytics/internal/insight"
	"github.com/wonny/jbp-analytics/internal/report"
	"github.com/wonny/jbp-analytics/internal/roi"
	"github.com/wonny/jbp-analytics/internal/storage/memory"
	"github.com/wonny/jbp-analytics/internal/storage/postgres"
	"github.com/wonny/jbp-analytics/pkg/config"
	"github.com/wonny/jbp-analytics/pkg/database"
	"github.com/wonny/jbp-analytics/pkg/logger"
)

// DemoTenant owns the seeded data of --demo mode
const DemoTenant = "demo"

// app holds the shared wiring of every command
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB // nil in demo mode
	store contracts.Store

	calculator *roi.Calculator
	engine     *insight.Engine
	ranker     *insight.Ranker
	comparator *comparison.Comparator
	composer   *report.Composer
}

// bootstrap loads config, opens the store and builds the analytics services
func bootstrap() (*app, error) {
	load := config.Load
	if demo {
		load = config.LoadWithoutDatabase
	}
	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)
	a := &app{cfg: cfg, log: log}

	if demo {
		store := memory.New()
		seedDemo(store, DemoTenant)
		a.store = store
		if tenantID == "" {
			tenantID = DemoTenant
		}
		log.WithTenant(tenantID).Info("Using seeded in-memory store")
	} else {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		a.store = postgres.NewStore(db.Pool)
		log.Info("Connected to database")
	}

	rules, err := insight.ResolveRules(cfg.Analytics.InsightRulesFile)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("load insight rules: %w", err)
	}
	engine, err := insight.NewEngine(rules, log)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("build insight engine: %w", err)
	}

	a.calculator = roi.NewCalculator(log)
	a.engine = engine
	a.ranker = insight.NewRanker(cfg.Analytics.TopInsights)
	a.comparator = comparison.NewComparator(log)
	a.composer = report.NewComposer(a.calculator, a.engine, a.ranker, a.comparator, log)
	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

// requireTenant fails commands that act on tenant data without --tenant
func requireTenant() error {
	if tenantID == "" {
		return errors.New("--tenant is required")
	}
	return nil
}

// inTx runs fn in one store transaction
func (a *app) inTx(ctx context.Context, fn func(gw contracts.TxGateway) error) error {
	return a.store.InTx(ctx, fn)
}
