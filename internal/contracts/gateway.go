package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: 분석 엔진이 사용하는 저장소 인터페이스는 여기서만 정의
// Every call is scoped to a tenant. Lookups of a single entity return the
// matching Err*NotFound sentinel when nothing matches.

// BaselineLimit caps the history used to extrapolate organic sales
const BaselineLimit = 52

// RecentSalesLimit is the number of weeks a supplier report looks at
const RecentSalesLimit = 12

// CompetitorLimit caps the competitor list of a comparison
const CompetitorLimit = 5

// InsightListLimit is the default page of stored insights
const InsightListLimit = 20

// PlanReader reads JBP plans
type PlanReader interface {
	GetPlan(ctx context.Context, tenantID, planID string) (*InvestmentPlan, error)
	// ListRunningPlans returns approved and active plans of the tenant
	ListRunningPlans(ctx context.Context, tenantID string) ([]InvestmentPlan, error)
}

// SalesReader reads weekly sales history
type SalesReader interface {
	// GetSalesRows returns rows inside the window, oldest first
	GetSalesRows(ctx context.Context, tenantID, supplierID string, window DateRange) ([]SalesPeriodRecord, error)
	// GetBaselineRows returns rows strictly before the date, most recent first
	GetBaselineRows(ctx context.Context, tenantID, supplierID string, before time.Time, limit int) ([]SalesPeriodRecord, error)
	// GetRecentSales returns the latest rows, most recent first
	GetRecentSales(ctx context.Context, tenantID, supplierID string, limit int) ([]SalesPeriodRecord, error)
}

// SupplierReader reads supplier profile data
type SupplierReader interface {
	GetSupplier(ctx context.Context, tenantID, supplierID string) (*SupplierProfile, error)
	GetJBPAggregate(ctx context.Context, tenantID, supplierID string) (*JBPAggregate, error)
	GetProductRows(ctx context.Context, tenantID, supplierID string) ([]ProductRow, error)
}

// MarketReader reads cross-supplier aggregates
type MarketReader interface {
	GetSupplierAggregate(ctx context.Context, tenantID, supplierID string) (*SupplierAggregate, error)
	// GetMarketAverage averages the category, or every supplier when category is empty
	GetMarketAverage(ctx context.Context, tenantID, category string) (*MarketAverage, error)
	// GetCompetitors returns the top suppliers by total sales, excluding supplierID,
	// restricted to category when it is not empty
	GetCompetitors(ctx context.Context, tenantID, supplierID, category string, limit int) ([]SupplierAggregate, error)
}

// SnapshotStore holds append-only analytics output
type SnapshotStore interface {
	PersistROI(ctx context.Context, tenantID string, computation *ROIComputation) error
	// LatestROI returns nil, nil when the supplier has no snapshot yet
	LatestROI(ctx context.Context, tenantID, supplierID string) (*ROIComputation, error)
	PersistInsights(ctx context.Context, tenantID, supplierID string, candidates []InsightCandidate) error
	// ListInsights returns stored insights of a supplier, newest first
	ListInsights(ctx context.Context, tenantID, supplierID string, limit int) ([]InsightCandidate, error)
}

// Gateway is the full data access surface of the analytics engine
type Gateway interface {
	PlanReader
	SalesReader
	SupplierReader
	MarketReader
	SnapshotStore
}

// ImportWriter receives imported sales files
type ImportWriter interface {
	// UpsertSupplier creates the supplier or refreshes its profile, adding salesDelta to total sales
	UpsertSupplier(ctx context.Context, tenantID string, supplier SupplierProfile, salesDelta float64) error
	// UpsertSalesRecord replaces the row with the same (supplier, year, week)
	UpsertSalesRecord(ctx context.Context, tenantID string, record SalesPeriodRecord) error
	UpsertProduct(ctx context.Context, tenantID string, product ImportedProduct) error
	AppendProductSales(ctx context.Context, tenantID string, sale ProductSale) error
}

// ImportedProduct is a product described by an import row
type ImportedProduct struct {
	ID              string   `json:"id"`
	SupplierID      string   `json:"supplier_id"`
	SKU             string   `json:"sku_code"`
	Name            string   `json:"product_name"`
	Category        string   `json:"category,omitempty"`
	Department      string   `json:"department,omitempty"`
	Price           float64  `json:"price"`
	SellThroughRate *float64 `json:"sell_through_rate,omitempty"`
	RotationSpeed   string   `json:"rotation_speed,omitempty"`
}

// ProductSale is a weekly product sales row
type ProductSale struct {
	ProductID     string   `json:"product_id"`
	SupplierID    string   `json:"supplier_id"`
	Year          int      `json:"year"`
	Week          int      `json:"week"`
	SalesAmount   float64  `json:"sales_amount"`
	SalesQuantity int      `json:"sales_quantity"`
	ProfitMargin  *float64 `json:"profit_margin,omitempty"`
}

// Store opens units of work. All writes made through the Gateway handed to fn
// commit together when fn returns nil and roll back otherwise.
type Store interface {
	InTx(ctx context.Context, fn func(gw TxGateway) error) error
}

// TxGateway is the Gateway plus import writes, bound to one transaction
type TxGateway interface {
	Gateway
	ImportWriter
}
