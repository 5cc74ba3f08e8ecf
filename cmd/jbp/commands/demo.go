package commands

import (
	"time"

	"github.com/wonny/jbp-analytics/internal/contracts"
	"github.com/wonny/jbp-analytics/internal/storage/memory"
)

// seedDemo fills store with two dairy suppliers, one bakery supplier and
// 16 weeks of sales ending last week, with an active plan over the latest 8 weeks
func seedDemo(store *memory.Store, tenant string) {
	f := func(v float64) *float64 { return &v }

	store.AddSupplier(tenant, contracts.SupplierProfile{ID: "sup-dairy-1", Name: "Alpine Dairy", Category: "dairy", BusinessSize: "large"})
	store.AddSupplier(tenant, contracts.SupplierProfile{ID: "sup-dairy-2", Name: "Valley Farms", Category: "dairy", BusinessSize: "medium"})
	store.AddSupplier(tenant, contracts.SupplierProfile{ID: "sup-bakery-1", Name: "Golden Crust", Category: "bakery", BusinessSize: "small"})

	today := time.Now().UTC().Truncate(24 * time.Hour)
	first := today.AddDate(0, 0, -7*16)

	for w := 0; w < 16; w++ {
		date := first.AddDate(0, 0, 7*w)
		year, week := date.ISOWeek()

		lift, growth := 1.0, 2.0
		if w >= 8 {
			lift, growth = 1.35, 16
		}
		store.AddSales(tenant,
			contracts.SalesPeriodRecord{
				SupplierID: "sup-dairy-1", Year: year, Week: week, PeriodDate: date,
				SalesAmount: 40000 * lift, Quantity: int(8000 * lift), AverageTicket: 5,
				GrowthPercentage: f(growth), MarketShare: f(7.5), DepartmentTotal: 520000,
			},
			contracts.SalesPeriodRecord{
				SupplierID: "sup-dairy-2", Year: year, Week: week, PeriodDate: date,
				SalesAmount: 65000, Quantity: 12000, AverageTicket: 5.4,
				GrowthPercentage: f(3), MarketShare: f(12.5), DepartmentTotal: 520000,
			},
			contracts.SalesPeriodRecord{
				SupplierID: "sup-bakery-1", Year: year, Week: week, PeriodDate: date,
				SalesAmount: 12000, Quantity: 4000, AverageTicket: 3,
				GrowthPercentage: f(-1.5), MarketShare: f(4), DepartmentTotal: 150000,
			},
		)
	}

	store.AddPlan(tenant, contracts.InvestmentPlan{
		ID:              "plan-dairy-1",
		SupplierID:      "sup-dairy-1",
		Title:           "Endcap and flyer campaign",
		InvestmentValue: 60000,
		InvestmentType:  "marketing",
		StartDate:       first.AddDate(0, 0, 7*8),
		EndDate:         today,
		ExpectedROI:     f(30),
		SalesTarget:     f(450000),
		GoalAchievement: f(92),
		Status:          contracts.PlanActive,
	})

	store.AddProduct(tenant,
		contracts.ImportedProduct{ID: "prd-yogurt", SupplierID: "sup-dairy-1", SKU: "SKU-YOG", Name: "Greek Yogurt", Price: 2.5, SellThroughRate: f(64), RotationSpeed: "high"},
		contracts.ProductSale{ProductID: "prd-yogurt", SupplierID: "sup-dairy-1", SalesAmount: 18000, SalesQuantity: 7200, ProfitMargin: f(42)},
	)
	store.AddProduct(tenant,
		contracts.ImportedProduct{ID: "prd-butter", SupplierID: "sup-dairy-1", SKU: "SKU-BUT", Name: "Salted Butter", Price: 4, SellThroughRate: f(28), RotationSpeed: "low"},
		contracts.ProductSale{ProductID: "prd-butter", SupplierID: "sup-dairy-1", SalesAmount: 3200, SalesQuantity: 800, ProfitMargin: f(18)},
	)
}
