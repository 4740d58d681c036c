// Package reports provides read-only analytics over sales, stock and
// the movement ledger.
package reports

import (
	"time"

	"framasa/internal/core/types"
	"framasa/internal/domain/billing"
	"framasa/internal/domain/inventory"
)

// --- Sales ---

// SalesFilter bounds sales reports to a period and optionally one
// company.
type SalesFilter struct {
	From    time.Time
	To      time.Time
	Company *billing.Company
}

// StatusBreakdown is the invoice count and amount for one status.
type StatusBreakdown struct {
	Status billing.InvoiceStatus `db:"status" json:"status"`
	Count  int64                 `db:"count" json:"count"`
	Total  types.Money           `db:"total" json:"total"`
}

// CompanyBreakdown is the sales contribution of one company.
type CompanyBreakdown struct {
	Company billing.Company `db:"company" json:"company"`
	Count   int64           `db:"count" json:"count"`
	Total   types.Money     `db:"total" json:"total"`
}

// SalesStats summarizes invoicing over a period. Voided invoices are
// excluded from the money totals.
type SalesStats struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	InvoiceCount     int64       `json:"invoiceCount"`
	TotalSales       types.Money `json:"totalSales"`
	TotalPaid        types.Money `json:"totalPaid"`
	TotalOutstanding types.Money `json:"totalOutstanding"`

	ByStatus  []StatusBreakdown  `json:"byStatus"`
	ByCompany []CompanyBreakdown `json:"byCompany"`
}

// SalesWindow is one side of a trend comparison.
type SalesWindow struct {
	From  time.Time   `json:"from"`
	To    time.Time   `json:"to"`
	Count int64       `json:"count"`
	Total types.Money `json:"total"`
}

// SalesTrend compares a period against the preceding window of equal
// length.
type SalesTrend struct {
	Current  SalesWindow `json:"current"`
	Previous SalesWindow `json:"previous"`

	// GrowthPct is nil when the previous window had no sales.
	GrowthPct *types.Money `json:"growthPct,omitempty"`
}

// --- Stock ---

// LowStockItem is a product at or below its minimum level.
type LowStockItem struct {
	Domain   inventory.Domain `db:"domain" json:"domain"`
	ID       string           `db:"id" json:"id"`
	Code     string           `db:"code" json:"code"`
	Name     string           `db:"name" json:"name"`
	Stock    types.Quantity   `db:"stock" json:"stock"`
	MinStock types.Quantity   `db:"min_stock" json:"minStock"`
}

// StockSummary aggregates one domain's stock position.
type StockSummary struct {
	Domain        inventory.Domain `db:"domain" json:"domain"`
	ProductCount  int64            `db:"product_count" json:"productCount"`
	LowStockCount int64            `db:"low_stock_count" json:"lowStockCount"`
	StockValue    types.Money      `db:"stock_value" json:"stockValue"`
}

// --- Movements ---

// MovementFilter bounds movement reports.
type MovementFilter struct {
	From   time.Time
	To     time.Time
	Domain *inventory.Domain
}

// MovementTotals aggregates the ledger per movement kind.
type MovementTotals struct {
	Kind          inventory.MovementKind `db:"kind" json:"kind"`
	Count         int64                  `db:"count" json:"count"`
	TotalQuantity types.Quantity         `db:"total_quantity" json:"totalQuantity"`
}
