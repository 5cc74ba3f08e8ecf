package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/jbp-analytics/internal/importer"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a weekly sales file",
	Long: `Imports supplier sales from a CSV or XLSX file (first sheet).

Required columns:
  supplier_id, supplier_name, year, week, sales_amount, period_date

Optional columns add plan links, growth and market share, and product rows
(product_id, product_name, sku_code, price, product_sales_amount, ...).
The whole file is written in one transaction.

Example:
  go run ./cmd/jbp import sales.csv --tenant acme
  go run ./cmd/jbp import week12.xlsx --tenant acme`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	format, err := importer.DetectFormat(path)
	if err != nil {
		return err
	}

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	if err := requireTenant(); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	result, err := importer.NewImporter(a.store, a.log).Import(context.Background(), tenantID, file, format)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	PrintHeader("Sales Import",
		[2]string{"File", path},
		[2]string{"Tenant", tenantID},
		[2]string{"Rows", strconv.Itoa(result.Summary.RowsImported)},
		[2]string{"Suppliers", strconv.Itoa(result.Summary.SuppliersUpserted)},
		[2]string{"Products", strconv.Itoa(result.Summary.ProductsUpserted)},
	)
	PrintSuccess("Import completed")
	return nil
}
