package reports

import (
	"context"
)

// Repository defines report data access. Implementations aggregate in
// SQL; the service only validates and shapes the result.
type Repository interface {
	// Sales
	GetSalesStats(ctx context.Context, f SalesFilter) (*SalesStats, error)
	GetSalesWindow(ctx context.Context, f SalesFilter) (*SalesWindow, error)

	// Stock
	GetLowStock(ctx context.Context) ([]LowStockItem, error)
	GetStockSummary(ctx context.Context) ([]StockSummary, error)

	// Movements
	GetMovementTotals(ctx context.Context, f MovementFilter) ([]MovementTotals, error)
}
