package importer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wonny/jbp-analytics/internal/contracts"
	"github.com/wonny/jbp-analytics/internal/roi"
	"github.com/wonny/jbp-analytics/internal/storage/memory"
	"github.com/wonny/jbp-analytics/pkg/logger"
)

const salesCSV = `supplier_id,supplier_name,category,year,week,sales_amount,period_date,growth_percentage,market_share,product_id,product_name,product_sales_amount,sales_quantity
sup-1,Acme,dairy,2024,1,1000,2024-01-07,5.5,12,prod-123456789,Milk,400,10
sup-1,Acme,dairy,2024,2,1200,2024-01-14,,,,,,
sup-2,Bolt,,2024,1,abc,not-a-date,,,prod-2,,,3
`

var fixedNow = time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC)

func newImporter(store *memory.Store) *Importer {
	return NewImporter(store, logger.Nop()).WithClock(func() time.Time { return fixedNow })
}

func TestImportCSV(t *testing.T) {
	store := memory.New()
	im := newImporter(store)

	result, err := im.Import(context.Background(), "t1", strings.NewReader(salesCSV), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, ImportSummary{RowsImported: 3, SuppliersUpserted: 2, ProductsUpserted: 2}, result.Summary)
	assert.Len(t, result.SampleRows, 3)

	t.Run("supplier sales accumulate", func(t *testing.T) {
		s, ok := store.Supplier("t1", "sup-1")
		require.True(t, ok)
		assert.Equal(t, 2200.0, s.TotalSales)
		assert.Equal(t, "dairy", s.Category)

		bolt, ok := store.Supplier("t1", "sup-2")
		require.True(t, ok)
		assert.Equal(t, contracts.DefaultCategory, bolt.Category)
		assert.Zero(t, bolt.TotalSales)
	})

	t.Run("blank growth stays unknown", func(t *testing.T) {
		rows := store.SalesRows("t1", "sup-1")
		require.Len(t, rows, 2)
		require.NotNil(t, rows[0].GrowthPercentage)
		assert.Equal(t, 5.5, *rows[0].GrowthPercentage)
		assert.Nil(t, rows[1].GrowthPercentage)
		assert.Nil(t, rows[1].MarketShare)
	})

	t.Run("malformed cells are lenient", func(t *testing.T) {
		rows := store.SalesRows("t1", "sup-2")
		require.Len(t, rows, 1)
		assert.Zero(t, rows[0].SalesAmount)
		assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), rows[0].PeriodDate)
	})

	t.Run("product sales", func(t *testing.T) {
		sales := store.ProductSales("t1")
		require.Len(t, sales, 2)
		assert.Equal(t, 400.0, sales[0].SalesAmount)
		assert.Equal(t, 10, sales[0].SalesQuantity)
		assert.Zero(t, sales[1].SalesAmount)
		assert.Equal(t, 3, sales[1].SalesQuantity)

		var products []contracts.ProductRow
		err := store.InTx(context.Background(), func(gw contracts.TxGateway) error {
			var err error
			products, err = gw.GetProductRows(context.Background(), "t1", "sup-2")
			return err
		})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, DefaultProductName, products[0].Name)
	})
}

func TestImportXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"supplier_id", "supplier_name", "year", "week", "sales_amount", "period_date"},
		{"sup-1", "Acme", 2024, 3, 900.5, "2024-01-21"},
		{},
		{"sup-1", "Acme", 2024, 4, 1100, "2024-01-28"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	store := memory.New()
	result, err := newImporter(store).Import(context.Background(), "t1", buf, FormatXLSX)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Summary.RowsImported)
	assert.Equal(t, 1, result.Summary.SuppliersUpserted)

	sales := store.SalesRows("t1", "sup-1")
	require.Len(t, sales, 2)
	assert.Equal(t, 900.5, sales[0].SalesAmount)
	assert.Equal(t, 4, sales[1].Week)
}

func TestImportRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
		message string
	}{
		{name: "empty", content: "", want: ErrEmptyFile},
		{name: "header only", content: "supplier_id,supplier_name,year,week,sales_amount,period_date\n", want: ErrEmptyFile},
		{
			name:    "missing columns",
			content: "supplier_name,year,sales_amount\nAcme,2024,10\n",
			want:    ErrMissingColumns,
			message: "missing required columns: period_date, supplier_id, week",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			_, err := newImporter(store).Import(context.Background(), "t1", strings.NewReader(tt.content), FormatCSV)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
			if tt.message != "" {
				assert.Equal(t, tt.message, err.Error())
			}
		})
	}
}

func TestImportNonFiniteCellsAreZero(t *testing.T) {
	const csvData = `supplier_id,supplier_name,category,year,week,sales_amount,period_date,growth_percentage,market_share
sup-1,Acme,dairy,2024,1,NaN,2024-01-07,Inf,-Inf
sup-1,Acme,dairy,2024,2,+Inf,2024-01-14,nan,5
`
	store := memory.New()
	_, err := newImporter(store).Import(context.Background(), "t1", strings.NewReader(csvData), FormatCSV)
	require.NoError(t, err)

	rows := store.SalesRows("t1", "sup-1")
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Zero(t, r.SalesAmount)
		require.NotNil(t, r.GrowthPercentage)
		assert.Zero(t, *r.GrowthPercentage)
	}
	supplier, ok := store.Supplier("t1", "sup-1")
	require.True(t, ok)
	assert.Zero(t, supplier.TotalSales)

	store.AddPlan("t1", contracts.InvestmentPlan{
		ID:              "plan-1",
		SupplierID:      "sup-1",
		InvestmentValue: 1000,
		StartDate:       time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
		Status:          contracts.PlanActive,
	})

	calc := roi.NewCalculator(logger.Nop())
	var result *contracts.ROIComputation
	require.NotPanics(t, func() {
		err = store.InTx(context.Background(), func(gw contracts.TxGateway) error {
			var err error
			result, err = calc.Calculate(context.Background(), gw, "t1", "plan-1", nil)
			return err
		})
	})
	require.NoError(t, err)
	assert.Zero(t, result.Basic.GrossReturn)
}

func TestImportIsAllOrNothing(t *testing.T) {
	content := "supplier_id,supplier_name,year,week,sales_amount,period_date\n" +
		"sup-1,Acme,2024,1,100,2024-01-07\n" +
		"sup-2,,2024,1,100,2024-01-07\n"

	store := memory.New()
	_, err := newImporter(store).Import(context.Background(), "t1", strings.NewReader(content), FormatCSV)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")

	_, ok := store.Supplier("t1", "sup-1")
	assert.False(t, ok)
}

func TestImportValidatesRequest(t *testing.T) {
	im := newImporter(memory.New())

	_, err := im.Import(context.Background(), "", strings.NewReader(salesCSV), FormatCSV)
	assert.Error(t, err)

	_, err = im.Import(context.Background(), "t1", strings.NewReader(salesCSV), Format("json"))
	assert.Error(t, err)
}

func TestImportGeneratesMissingSupplierID(t *testing.T) {
	content := "supplier_id,supplier_name,year,week,sales_amount,period_date\n" +
		",Anon,2024,1,100,2024-01-07\n"

	store := memory.New()
	im := newImporter(store)
	im.newID = func() string { return "generated" }

	_, err := im.Import(context.Background(), "t1", strings.NewReader(content), FormatCSV)
	require.NoError(t, err)

	s, ok := store.Supplier("t1", "generated")
	require.True(t, ok)
	assert.Equal(t, "Anon", s.Name)
}

func TestDetectFormat(t *testing.T) {
	f, err := DetectFormat("sales.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = DetectFormat("/tmp/week.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = DetectFormat("sales.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "SKU-prod-1", defaultSKU("prod-123456"))
	assert.Equal(t, "SKU-p1", defaultSKU("p1"))

	fallback := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), parseDate("2024-02-03T10:00:00Z", fallback))
	assert.Equal(t, fallback, parseDate("", fallback))
}
