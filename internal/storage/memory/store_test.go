package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/jbp-analytics/internal/contracts"
)

func week(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*(n-1))
}

func seed() *Store {
	s := New()
	s.AddSupplier("t1", contracts.SupplierProfile{ID: "sup-1", Name: "Acme", Category: "dairy"})
	s.AddSupplier("t1", contracts.SupplierProfile{ID: "sup-2", Name: "Bolt", Category: "dairy"})
	s.AddSupplier("t1", contracts.SupplierProfile{ID: "sup-3", Name: "Crest", Category: "bakery"})
	for i := 1; i <= 5; i++ {
		g := float64(i)
		s.AddSales("t1", contracts.SalesPeriodRecord{
			SupplierID: "sup-1", Year: 2024, Week: i, PeriodDate: week(i),
			SalesAmount: float64(i * 100), GrowthPercentage: &g,
		})
	}
	s.AddSales("t1", contracts.SalesPeriodRecord{SupplierID: "sup-2", Year: 2024, Week: 1, PeriodDate: week(1), SalesAmount: 9000})
	s.AddSales("t1", contracts.SalesPeriodRecord{SupplierID: "sup-3", Year: 2024, Week: 1, PeriodDate: week(1), SalesAmount: 50})
	return s
}

func TestSalesOrdering(t *testing.T) {
	s := seed()
	ctx := context.Background()

	err := s.InTx(ctx, func(gw contracts.TxGateway) error {
		rows, err := gw.GetSalesRows(ctx, "t1", "sup-1", contracts.DateRange{Start: week(2), End: week(4)})
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, 2, rows[0].Week)
		assert.Equal(t, 4, rows[2].Week)

		baseline, err := gw.GetBaselineRows(ctx, "t1", "sup-1", week(4), 52)
		require.NoError(t, err)
		require.Len(t, baseline, 3)
		assert.Equal(t, 3, baseline[0].Week, "baseline is most recent first")

		recent, err := gw.GetRecentSales(ctx, "t1", "sup-1", 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, 5, recent[0].Week)
		return nil
	})
	require.NoError(t, err)
}

func TestTenantIsolation(t *testing.T) {
	s := seed()
	ctx := context.Background()

	err := s.InTx(ctx, func(gw contracts.TxGateway) error {
		_, err := gw.GetSupplier(ctx, "t2", "sup-1")
		assert.ErrorIs(t, err, contracts.ErrSupplierNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestInTxRollsBackOnError(t *testing.T) {
	s := seed()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(gw contracts.TxGateway) error {
		require.NoError(t, gw.PersistROI(ctx, "t1", &contracts.ROIComputation{ID: "r1", SupplierID: "sup-1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, s.ROISnapshots("t1"))

	err = s.InTx(ctx, func(gw contracts.TxGateway) error {
		return gw.PersistROI(ctx, "t1", &contracts.ROIComputation{ID: "r2", SupplierID: "sup-1"})
	})
	require.NoError(t, err)
	require.Len(t, s.ROISnapshots("t1"), 1)
}

func TestInTxSeesOwnWrites(t *testing.T) {
	s := seed()
	ctx := context.Background()

	err := s.InTx(ctx, func(gw contracts.TxGateway) error {
		latest, err := gw.LatestROI(ctx, "t1", "sup-1")
		require.NoError(t, err)
		assert.Nil(t, latest)

		require.NoError(t, gw.PersistROI(ctx, "t1", &contracts.ROIComputation{ID: "r1", SupplierID: "sup-1"}))
		require.NoError(t, gw.PersistROI(ctx, "t1", &contracts.ROIComputation{ID: "r2", SupplierID: "sup-1"}))

		latest, err = gw.LatestROI(ctx, "t1", "sup-1")
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, "r2", latest.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestMarketQueries(t *testing.T) {
	s := seed()
	ctx := context.Background()

	err := s.InTx(ctx, func(gw contracts.TxGateway) error {
		agg, err := gw.GetSupplierAggregate(ctx, "t1", "sup-1")
		require.NoError(t, err)
		assert.Equal(t, 1500.0, agg.TotalSales)
		assert.Equal(t, 3.0, agg.Growth)

		competitors, err := gw.GetCompetitors(ctx, "t1", "sup-1", "dairy", 5)
		require.NoError(t, err)
		require.Len(t, competitors, 1)
		assert.Equal(t, "sup-2", competitors[0].SupplierID)

		all, err := gw.GetCompetitors(ctx, "t1", "sup-1", "", 5)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "sup-2", all[0].SupplierID, "ordered by total sales")

		avg, err := gw.GetMarketAverage(ctx, "t1", "bakery")
		require.NoError(t, err)
		assert.Equal(t, 50.0, avg.AvgSales)
		return nil
	})
	require.NoError(t, err)
}

func TestUpsertSupplierAccumulatesSales(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := s.InTx(ctx, func(gw contracts.TxGateway) error {
			return gw.UpsertSupplier(ctx, "t1", contracts.SupplierProfile{ID: "sup-1", Name: "Acme"}, 250)
		})
		require.NoError(t, err)
	}

	p, ok := s.Supplier("t1", "sup-1")
	require.True(t, ok)
	assert.Equal(t, 500.0, p.TotalSales)
}

func TestJBPAggregate(t *testing.T) {
	s := seed()
	roi := 20.0
	s.AddPlan("t1", contracts.InvestmentPlan{ID: "p1", SupplierID: "sup-1", InvestmentValue: 1000, Status: contracts.PlanActive, ExpectedROI: &roi})
	s.AddPlan("t1", contracts.InvestmentPlan{ID: "p2", SupplierID: "sup-1", InvestmentValue: 500, Status: contracts.PlanCompleted})
	ctx := context.Background()

	err := s.InTx(ctx, func(gw contracts.TxGateway) error {
		agg, err := gw.GetJBPAggregate(ctx, "t1", "sup-1")
		require.NoError(t, err)
		assert.Equal(t, 1, agg.ActiveCount)
		assert.Equal(t, 1500.0, agg.TotalInvestment)
		require.NotNil(t, agg.AverageROI)
		assert.Equal(t, 20.0, *agg.AverageROI)
		assert.Nil(t, agg.GoalAchievement)

		plans, err := gw.ListRunningPlans(ctx, "t1")
		require.NoError(t, err)
		require.Len(t, plans, 1)
		assert.Equal(t, "p1", plans[0].ID)
		return nil
	})
	require.NoError(t, err)
}

func TestListInsightsNewestFirst(t *testing.T) {
	s := seed()
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	err := s.InTx(ctx, func(gw contracts.TxGateway) error {
		if err := gw.PersistInsights(ctx, "t1", "sup-1", []contracts.InsightCandidate{
			{ID: "old", CreatedAt: at},
			{ID: "b", CreatedAt: at.Add(time.Hour)},
		}); err != nil {
			return err
		}
		return gw.PersistInsights(ctx, "t1", "sup-1", []contracts.InsightCandidate{
			{ID: "a", CreatedAt: at.Add(time.Hour)},
			{ID: "new", CreatedAt: at.Add(2 * time.Hour)},
		})
	})
	require.NoError(t, err)

	err = s.InTx(ctx, func(gw contracts.TxGateway) error {
		all, err := gw.ListInsights(ctx, "t1", "sup-1", 0)
		require.NoError(t, err)
		ids := make([]string, len(all))
		for i, c := range all {
			ids[i] = c.ID
		}
		assert.Equal(t, []string{"new", "a", "b", "old"}, ids)

		page, err := gw.ListInsights(ctx, "t1", "sup-1", 2)
		require.NoError(t, err)
		assert.Len(t, page, 2)

		none, err := gw.ListInsights(ctx, "t2", "sup-1", 10)
		require.NoError(t, err)
		assert.Empty(t, none)
		return nil
	})
	require.NoError(t, err)
}
