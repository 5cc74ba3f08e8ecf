// Package memory is an in-process implementation of the analytics gateway.
// It backs unit tests and the CLI demo mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wonny/jbp-analytics/internal/contracts"
)

// Store keeps every tenant's data in maps guarded by one lock.
// InTx runs against a copy of the tenant data and swaps it in on success.
type Store struct {
	mu      sync.RWMutex
	tenants map[string]*tenantData
}

type tenantData struct {
	suppliers    map[string]contracts.SupplierProfile
	plans        map[string]contracts.InvestmentPlan
	sales        map[string][]contracts.SalesPeriodRecord
	products     map[string]contracts.ImportedProduct
	productSales []contracts.ProductSale
	roi          []contracts.ROIComputation
	insights     map[string][]contracts.InsightCandidate
}

func newTenantData() *tenantData {
	return &tenantData{
		suppliers: make(map[string]contracts.SupplierProfile),
		plans:     make(map[string]contracts.InvestmentPlan),
		sales:     make(map[string][]contracts.SalesPeriodRecord),
		products:  make(map[string]contracts.ImportedProduct),
		insights:  make(map[string][]contracts.InsightCandidate),
	}
}

func (d *tenantData) clone() *tenantData {
	c := newTenantData()
	for k, v := range d.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range d.plans {
		c.plans[k] = v
	}
	for k, v := range d.sales {
		c.sales[k] = append([]contracts.SalesPeriodRecord(nil), v...)
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.insights {
		c.insights[k] = append([]contracts.InsightCandidate(nil), v...)
	}
	c.productSales = append([]contracts.ProductSale(nil), d.productSales...)
	c.roi = append([]contracts.ROIComputation(nil), d.roi...)
	return c
}

var _ contracts.Store = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{tenants: make(map[string]*tenantData)}
}

func (s *Store) tenant(tenantID string) *tenantData {
	d, ok := s.tenants[tenantID]
	if !ok {
		d = newTenantData()
		s.tenants[tenantID] = d
	}
	return d
}

// InTx runs fn against a private copy of the tenant data.
// Transactions are serialized; the copy replaces the live data only when fn succeeds.
func (s *Store) InTx(ctx context.Context, fn func(gw contracts.TxGateway) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txGateway{base: s.tenants, staged: make(map[string]*tenantData)}
	if err := fn(tx); err != nil {
		return err
	}
	for id, d := range tx.staged {
		s.tenants[id] = d
	}
	return nil
}

// AddSupplier seeds a supplier
func (s *Store) AddSupplier(tenantID string, supplier contracts.SupplierProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	supplier.TenantID = tenantID
	s.tenant(tenantID).suppliers[supplier.ID] = supplier
}

// AddPlan seeds a plan
func (s *Store) AddPlan(tenantID string, plan contracts.InvestmentPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenant(tenantID).plans[plan.ID] = plan
}

// AddSales seeds sales rows, replacing rows with the same (supplier, year, week)
func (s *Store) AddSales(tenantID string, rows ...contracts.SalesPeriodRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.tenant(tenantID)
	for _, r := range rows {
		upsertSales(d, r)
	}
}

// AddProduct seeds a product with its sales rows
func (s *Store) AddProduct(tenantID string, product contracts.ImportedProduct, sales ...contracts.ProductSale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.tenant(tenantID)
	d.products[product.ID] = product
	d.productSales = append(d.productSales, sales...)
}

// ROISnapshots returns every persisted ROI snapshot of the tenant, oldest first
func (s *Store) ROISnapshots(tenantID string) []contracts.ROIComputation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.tenants[tenantID]
	if !ok {
		return nil
	}
	return append([]contracts.ROIComputation(nil), d.roi...)
}

// Insights returns every persisted insight of a supplier, oldest first
func (s *Store) Insights(tenantID, supplierID string) []contracts.InsightCandidate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.tenants[tenantID]
	if !ok {
		return nil
	}
	return append([]contracts.InsightCandidate(nil), d.insights[supplierID]...)
}

// SalesRows returns the stored sales rows of a supplier
func (s *Store) SalesRows(tenantID, supplierID string) []contracts.SalesPeriodRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.tenants[tenantID]
	if !ok {
		return nil
	}
	return append([]contracts.SalesPeriodRecord(nil), d.sales[supplierID]...)
}

// Supplier returns a stored supplier profile
func (s *Store) Supplier(tenantID, supplierID string) (contracts.SupplierProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.tenants[tenantID]
	if !ok {
		return contracts.SupplierProfile{}, false
	}
	p, ok := d.suppliers[supplierID]
	return p, ok
}

// ProductSales returns every stored product sales row of the tenant
func (s *Store) ProductSales(tenantID string) []contracts.ProductSale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.tenants[tenantID]
	if !ok {
		return nil
	}
	return append([]contracts.ProductSale(nil), d.productSales...)
}

func upsertSales(d *tenantData, r contracts.SalesPeriodRecord) {
	rows := d.sales[r.SupplierID]
	for i := range rows {
		if rows[i].Year == r.Year && rows[i].Week == r.Week {
			if r.PlanID == "" {
				r.PlanID = rows[i].PlanID
			}
			rows[i] = r
			return
		}
	}
	d.sales[r.SupplierID] = append(rows, r)
}

// sortByPeriod orders rows oldest first
func sortByPeriod(rows []contracts.SalesPeriodRecord) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].PeriodDate.Equal(rows[j].PeriodDate) {
			return rows[i].PeriodDate.Before(rows[j].PeriodDate)
		}
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Week < rows[j].Week
	})
}

func reverse(rows []contracts.SalesPeriodRecord) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

func limitRows(rows []contracts.SalesPeriodRecord, limit int) []contracts.SalesPeriodRecord {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
