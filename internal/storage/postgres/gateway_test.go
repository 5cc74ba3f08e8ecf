package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/jbp-analytics/internal/contracts"
)

func seedTenant(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()

	err := store.InTx(ctx, func(gw contracts.TxGateway) error {
		g := gw.(*Gateway)
		for _, s := range []contracts.SupplierProfile{
			{ID: "sup-1", Name: "Acme", Category: "dairy"},
			{ID: "sup-2", Name: "Bolt", Category: "dairy"},
			{ID: "sup-3", Name: "Crest", Category: "bakery"},
		} {
			if err := g.UpsertSupplier(ctx, "t1", s, 0); err != nil {
				return err
			}
		}
		for i := 1; i <= 6; i++ {
			rec := contracts.SalesPeriodRecord{
				SupplierID:       "sup-1",
				Year:             2024,
				Week:             i,
				PeriodDate:       day(2024, time.January, 7*i),
				SalesAmount:      float64(1000 * i),
				GrowthPercentage: ptr(float64(i)),
				MarketShare:      ptr(10.0),
			}
			if err := g.UpsertSalesRecord(ctx, "t1", rec); err != nil {
				return err
			}
		}
		if err := g.UpsertSalesRecord(ctx, "t1", contracts.SalesPeriodRecord{
			SupplierID: "sup-2", Year: 2024, Week: 1, PeriodDate: day(2024, time.January, 7), SalesAmount: 50000,
		}); err != nil {
			return err
		}
		return g.AddPlan(ctx, "t1", contracts.InvestmentPlan{
			ID:              "plan-1",
			SupplierID:      "sup-1",
			InvestmentValue: 1000,
			StartDate:       day(2024, time.January, 20),
			EndDate:         day(2024, time.February, 29),
			ExpectedROI:     ptr(20.0),
			Status:          contracts.PlanActive,
		})
	})
	require.NoError(t, err)
}

func TestGatewayReads(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStore(pool)
	seedTenant(t, store)
	gw := NewGateway(pool)
	ctx := context.Background()

	t.Run("plans", func(t *testing.T) {
		plan, err := gw.GetPlan(ctx, "t1", "plan-1")
		require.NoError(t, err)
		assert.Equal(t, 1000.0, plan.InvestmentValue)
		assert.True(t, plan.IsRunning())

		_, err = gw.GetPlan(ctx, "t2", "plan-1")
		assert.True(t, errors.Is(err, contracts.ErrPlanNotFound))

		running, err := gw.ListRunningPlans(ctx, "t1")
		require.NoError(t, err)
		assert.Len(t, running, 1)
	})

	t.Run("sales ordering", func(t *testing.T) {
		window := contracts.DateRange{Start: day(2024, time.January, 14), End: day(2024, time.January, 28)}
		rows, err := gw.GetSalesRows(ctx, "t1", "sup-1", window)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, 2, rows[0].Week)
		assert.Equal(t, 4, rows[2].Week)

		baseline, err := gw.GetBaselineRows(ctx, "t1", "sup-1", day(2024, time.January, 28), 2)
		require.NoError(t, err)
		require.Len(t, baseline, 2)
		assert.Equal(t, 3, baseline[0].Week)
		assert.Equal(t, 2, baseline[1].Week)

		recent, err := gw.GetRecentSales(ctx, "t1", "sup-1", 12)
		require.NoError(t, err)
		require.Len(t, recent, 6)
		assert.Equal(t, 6, recent[0].Week)
	})

	t.Run("supplier", func(t *testing.T) {
		s, err := gw.GetSupplier(ctx, "t1", "sup-1")
		require.NoError(t, err)
		assert.Equal(t, "dairy", s.Category)

		_, err = gw.GetSupplier(ctx, "t1", "missing")
		assert.True(t, errors.Is(err, contracts.ErrSupplierNotFound))

		agg, err := gw.GetJBPAggregate(ctx, "t1", "sup-1")
		require.NoError(t, err)
		assert.Equal(t, 1, agg.ActiveCount)
		require.NotNil(t, agg.AverageROI)
		assert.InDelta(t, 20.0, *agg.AverageROI, 1e-9)
	})

	t.Run("market", func(t *testing.T) {
		a, err := gw.GetSupplierAggregate(ctx, "t1", "sup-1")
		require.NoError(t, err)
		assert.InDelta(t, 21000.0, a.TotalSales, 1e-9)
		assert.InDelta(t, 3.5, a.Growth, 1e-9)

		avg, err := gw.GetMarketAverage(ctx, "t1", "bakery")
		require.NoError(t, err)
		assert.Zero(t, avg.AvgSales)

		competitors, err := gw.GetCompetitors(ctx, "t1", "sup-1", "dairy", contracts.CompetitorLimit)
		require.NoError(t, err)
		require.Len(t, competitors, 1)
		assert.Equal(t, "sup-2", competitors[0].SupplierID)

		all, err := gw.GetCompetitors(ctx, "t1", "sup-1", "", contracts.CompetitorLimit)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestSnapshotRoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStore(pool)
	seedTenant(t, store)
	gw := NewGateway(pool)
	ctx := context.Background()

	latest, err := gw.LatestROI(ctx, "t1", "sup-1")
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i, roi := range []float64{10, 40} {
		c := &contracts.ROIComputation{
			ID:              "roi-" + string(rune('a'+i)),
			SupplierID:      "sup-1",
			PlanID:          "plan-1",
			Period:          contracts.DateRange{Start: day(2024, time.January, 20), End: day(2024, time.February, 29)},
			Basic:           contracts.BasicROI{Investment: 1000, ROIPercentage: ptr(roi)},
			Causality:       contracts.Causality{Interpretation: contracts.CausalityMedium},
			Projection:      contracts.Projection{ProjectedSales: 1200, Confidence: 0.7},
			Recommendations: []string{"Monitor results weekly."},
			CalculatedAt:    base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, gw.PersistROI(ctx, "t1", c))
	}

	latest, err = gw.LatestROI(ctx, "t1", "sup-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "roi-b", latest.ID)
	require.NotNil(t, latest.Basic.ROIPercentage)
	assert.Equal(t, 40.0, *latest.Basic.ROIPercentage)
	assert.Nil(t, latest.Incremental.IncrementalROI)
	assert.Equal(t, contracts.CausalityMedium, latest.Causality.Interpretation)
	assert.Equal(t, 1200.0, latest.Projection.ProjectedSales)
	assert.Equal(t, []string{"Monitor results weekly."}, latest.Recommendations)

	now := base
	insights := []contracts.InsightCandidate{
		{ID: "high_roi_1", RuleID: "high_roi", Type: contracts.InsightOpportunity, Title: "Investment opportunity",
			Message: "m", Action: "a", Priority: contracts.PriorityHigh, Confidence: 0.85,
			DataPoints: []string{"ROI: 40.0%"}, ExpectedImpact: contracts.ImpactHigh, Timeline: contracts.TimelineNext30Days,
			CreatedAt: now, ExpiresAt: now.Add(contracts.InsightValidity)},
	}
	require.NoError(t, gw.PersistInsights(ctx, "t1", "sup-1", insights))
	require.NoError(t, gw.PersistInsights(ctx, "t1", "sup-1", nil))

	stored, err := gw.ListInsights(ctx, "t1", "sup-1", 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, []string{"ROI: 40.0%"}, stored[0].DataPoints)
	assert.Nil(t, stored[0].Score)
}

func TestImportUpserts(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStore(pool)
	seedTenant(t, store)
	gw := NewGateway(pool)
	ctx := context.Background()

	err := store.InTx(ctx, func(tx contracts.TxGateway) error {
		if err := tx.UpsertSupplier(ctx, "t1", contracts.SupplierProfile{ID: "sup-1", Name: "Acme Foods"}, 500); err != nil {
			return err
		}
		if err := tx.UpsertSupplier(ctx, "t1", contracts.SupplierProfile{ID: "sup-9", Name: "Nine"}, 100); err != nil {
			return err
		}
		if err := tx.UpsertSalesRecord(ctx, "t1", contracts.SalesPeriodRecord{
			SupplierID: "sup-1", PlanID: "plan-1", Year: 2024, Week: 1, PeriodDate: day(2024, time.January, 7), SalesAmount: 1500,
		}); err != nil {
			return err
		}
		if err := tx.UpsertSalesRecord(ctx, "t1", contracts.SalesPeriodRecord{
			SupplierID: "sup-1", Year: 2024, Week: 1, PeriodDate: day(2024, time.January, 7), SalesAmount: 1700,
		}); err != nil {
			return err
		}
		product := contracts.ImportedProduct{ID: "p1", SupplierID: "sup-1", SKU: "SKU-p1", Name: "Milk", Price: 2.5}
		if err := tx.UpsertProduct(ctx, "t1", product); err != nil {
			return err
		}
		product.Name = "Whole milk"
		if err := tx.UpsertProduct(ctx, "t1", product); err != nil {
			return err
		}
		return tx.AppendProductSales(ctx, "t1", contracts.ProductSale{
			ProductID: "p1", SupplierID: "sup-1", Year: 2024, Week: 1, SalesAmount: 300, SalesQuantity: 120,
		})
	})
	require.NoError(t, err)

	s, err := gw.GetSupplier(ctx, "t1", "sup-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Foods", s.Name)
	assert.Equal(t, "dairy", s.Category)
	assert.InDelta(t, 500.0, s.TotalSales, 1e-9)

	nine, err := gw.GetSupplier(ctx, "t1", "sup-9")
	require.NoError(t, err)
	assert.Equal(t, contracts.DefaultCategory, nine.Category)

	rows, err := gw.GetRecentSales(ctx, "t1", "sup-1", 12)
	require.NoError(t, err)
	last := rows[len(rows)-1]
	assert.Equal(t, 1, last.Week)
	assert.Equal(t, 1700.0, last.SalesAmount)
	assert.Equal(t, "plan-1", last.PlanID)

	products, err := gw.GetProductRows(ctx, "t1", "sup-1")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Whole milk", products[0].Name)
	assert.Equal(t, 120, products[0].SalesQuantity)
}

func TestInTxRollsBack(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStore(pool)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.InTx(ctx, func(tx contracts.TxGateway) error {
		if err := tx.UpsertSupplier(ctx, "t1", contracts.SupplierProfile{ID: "sup-x", Name: "X"}, 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = NewGateway(pool).GetSupplier(ctx, "t1", "sup-x")
	assert.ErrorIs(t, err, contracts.ErrSupplierNotFound)
}
