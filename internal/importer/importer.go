// Package importer loads weekly supplier sales files into the analytics store.
package importer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/wonny/jbp-analytics/internal/contracts"
	"github.com/wonny/jbp-analytics/internal/numeric"
	"github.com/wonny/jbp-analytics/internal/observability"
	"github.com/wonny/jbp-analytics/pkg/logger"
)

// SampleSize is the number of parsed rows echoed back after an import
const SampleSize = 5

// DefaultProductName names products imported without one
const DefaultProductName = "Product"

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01-02-06",
}

// ImportSummary counts what an import touched
type ImportSummary struct {
	RowsImported      int `json:"rows_imported"`
	SuppliersUpserted int `json:"suppliers_upserted"`
	ProductsUpserted  int `json:"products_upserted"`
}

// Result is the outcome of one import
type Result struct {
	Summary    ImportSummary       `json:"summary"`
	SampleRows []map[string]string `json:"sample_rows"`
}

// request is checked before anything is written
type request struct {
	TenantID string `validate:"required"`
	Format   Format `validate:"oneof=csv xlsx"`
}

// rowIdentity is the part of a row the database cannot default
type rowIdentity struct {
	SupplierName string `validate:"required"`
	Line         int
}

// Importer writes sales files through a transactional store
type Importer struct {
	store    contracts.Store
	logger   *logger.Logger
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

// NewImporter creates an importer over store
func NewImporter(store contracts.Store, log *logger.Logger) *Importer {
	return &Importer{
		store:    store,
		logger:   log,
		validate: validator.New(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithClock replaces the clock used for missing period dates
func (im *Importer) WithClock(now func() time.Time) *Importer {
	im.now = now
	return im
}

// Import parses r and upserts every row in a single transaction.
// Nothing is written when any row fails.
func (im *Importer) Import(ctx context.Context, tenantID string, r io.Reader, format Format) (*Result, error) {
	if err := im.validate.Struct(request{TenantID: tenantID, Format: format}); err != nil {
		return nil, fmt.Errorf("invalid import request: %w", err)
	}

	table, err := ReadTable(r, format)
	if err != nil {
		return nil, err
	}

	for i, row := range table.Rows {
		id := rowIdentity{SupplierName: row["supplier_name"], Line: i + 2}
		if err := im.validate.Struct(id); err != nil {
			return nil, fmt.Errorf("invalid row at line %d: %w", id.Line, err)
		}
	}

	today := im.now().UTC().Truncate(24 * time.Hour)
	suppliers := make(map[string]bool)
	products := make(map[string]bool)

	err = im.store.InTx(ctx, func(gw contracts.TxGateway) error {
		for i, row := range table.Rows {
			supplierID, productID, err := im.persistRow(ctx, gw, tenantID, row, today)
			if err != nil {
				return fmt.Errorf("failed to import line %d: %w", i+2, err)
			}
			suppliers[supplierID] = true
			if productID != "" {
				products[productID] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Summary: ImportSummary{
			RowsImported:      len(table.Rows),
			SuppliersUpserted: len(suppliers),
			ProductsUpserted:  len(products),
		},
		SampleRows: table.Rows[:min(SampleSize, len(table.Rows))],
	}

	observability.RowsImported.Add(float64(result.Summary.RowsImported))
	im.logger.WithTenant(tenantID).WithFields(map[string]interface{}{
		"format":    string(format),
		"rows":      result.Summary.RowsImported,
		"suppliers": result.Summary.SuppliersUpserted,
		"products":  result.Summary.ProductsUpserted,
	}).Info("Sales file imported")

	return result, nil
}

func (im *Importer) persistRow(ctx context.Context, gw contracts.TxGateway, tenantID string, row map[string]string, today time.Time) (string, string, error) {
	supplierID := row["supplier_id"]
	if supplierID == "" {
		supplierID = im.newID()
	}
	salesAmount := numeric.ParseFloat(row["sales_amount"])

	supplier := contracts.SupplierProfile{
		ID:              supplierID,
		Name:            row["supplier_name"],
		Category:        row["category"],
		BusinessSize:    row["business_size"],
		TotalInvestment: numeric.ParseFloat(row["investment_value"]),
		AverageROI:      numeric.ParseOptionalFloat(row["expected_roi"]),
	}
	if err := gw.UpsertSupplier(ctx, tenantID, supplier, salesAmount); err != nil {
		return "", "", err
	}

	record := contracts.SalesPeriodRecord{
		SupplierID:       supplierID,
		PlanID:           firstNonEmpty(row["jbp_plan_id"], row["plan_id"]),
		Year:             numeric.ParseInt(row["year"]),
		Week:             numeric.ParseInt(row["week"]),
		PeriodDate:       parseDate(row["period_date"], today),
		SalesAmount:      salesAmount,
		Quantity:         numeric.ParseInt(row["sales_quantity"]),
		AverageTicket:    numeric.ParseFloat(row["average_ticket"]),
		GrowthPercentage: numeric.ParseOptionalFloat(row["growth_percentage"]),
		MarketShare:      numeric.ParseOptionalFloat(row["market_share"]),
		PreviousAmount:   numeric.ParseFloat(row["previous_sales_amount"]),
		DepartmentTotal:  numeric.ParseFloat(row["department_sales_amount"]),
	}
	if err := gw.UpsertSalesRecord(ctx, tenantID, record); err != nil {
		return "", "", err
	}

	productID := row["product_id"]
	if productID == "" {
		return supplierID, "", nil
	}

	product := contracts.ImportedProduct{
		ID:              productID,
		SupplierID:      supplierID,
		SKU:             firstNonEmpty(row["sku_code"], defaultSKU(productID)),
		Name:            firstNonEmpty(row["product_name"], DefaultProductName),
		Category:        row["product_category"],
		Department:      row["department"],
		Price:           numeric.ParseFloat(row["price"]),
		SellThroughRate: numeric.ParseOptionalFloat(row["sell_through_rate"]),
		RotationSpeed:   row["rotation_speed"],
	}
	if err := gw.UpsertProduct(ctx, tenantID, product); err != nil {
		return "", "", err
	}

	sale := contracts.ProductSale{
		ProductID:     productID,
		SupplierID:    supplierID,
		Year:          record.Year,
		Week:          record.Week,
		SalesAmount:   numeric.ParseFloat(firstNonEmpty(row["product_sales_amount"], row["sales_amount"])),
		SalesQuantity: numeric.ParseInt(firstNonEmpty(row["product_sales_quantity"], row["sales_quantity"])),
		ProfitMargin:  numeric.ParseOptionalFloat(row["profit_margin"]),
	}
	if err := gw.AppendProductSales(ctx, tenantID, sale); err != nil {
		return "", "", err
	}

	return supplierID, productID, nil
}

// parseDate accepts ISO dates and timestamps; anything else is the import day
func parseDate(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return fallback
}

func defaultSKU(productID string) string {
	if len(productID) > 6 {
		productID = productID[:6]
	}
	return "SKU-" + productID
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
