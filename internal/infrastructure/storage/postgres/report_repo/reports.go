// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"framasa/internal/domain/reports"
	"framasa/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository. All aggregation happens in
// SQL; the domain service only validates periods and shapes results.
type ReportRepo struct {
	txm *postgres.TxManager
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txm: txm}
}

// salesConditions builds the shared WHERE tail for sales queries.
// $1 and $2 are always the period bounds.
func salesConditions(f reports.SalesFilter) (string, []any) {
	cond := "deletion_mark = false AND date >= $1 AND date < $2"
	args := []any{f.From, f.To}
	if f.Company != nil {
		cond += " AND company = $3"
		args = append(args, *f.Company)
	}
	return cond, args
}

// GetSalesStats summarizes invoicing for the period. Voided invoices
// count toward InvoiceCount but are excluded from the money totals.
func (r *ReportRepo) GetSalesStats(ctx context.Context, f reports.SalesFilter) (*reports.SalesStats, error) {
	cond, args := salesConditions(f)
	querier := r.txm.GetQuerier(ctx)

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) as invoice_count,
			COALESCE(SUM(total) FILTER (WHERE status <> 'VOID'), 0) as total_sales,
			COALESCE(SUM(total_paid) FILTER (WHERE status <> 'VOID'), 0) as total_paid,
			COALESCE(SUM(total - total_paid) FILTER (WHERE status <> 'VOID'), 0) as total_outstanding
		FROM doc_invoices
		WHERE %s
	`, cond)

	stats := &reports.SalesStats{}
	err := querier.QueryRow(ctx, query, args...).Scan(
		&stats.InvoiceCount, &stats.TotalSales, &stats.TotalPaid, &stats.TotalOutstanding,
	)
	if err != nil {
		return nil, fmt.Errorf("sales totals: %w", err)
	}

	statusQuery := fmt.Sprintf(`
		SELECT status, COUNT(*) as count, COALESCE(SUM(total), 0) as total
		FROM doc_invoices
		WHERE %s
		GROUP BY status
		ORDER BY status
	`, cond)

	if err := pgxscan.Select(ctx, querier, &stats.ByStatus, statusQuery, args...); err != nil {
		return nil, fmt.Errorf("sales by status: %w", err)
	}

	companyQuery := fmt.Sprintf(`
		SELECT company, COUNT(*) as count, COALESCE(SUM(total), 0) as total
		FROM doc_invoices
		WHERE %s AND status <> 'VOID'
		GROUP BY company
		ORDER BY company
	`, cond)

	if err := pgxscan.Select(ctx, querier, &stats.ByCompany, companyQuery, args...); err != nil {
		return nil, fmt.Errorf("sales by company: %w", err)
	}

	return stats, nil
}

// GetSalesWindow returns count and total for one side of a trend comparison.
func (r *ReportRepo) GetSalesWindow(ctx context.Context, f reports.SalesFilter) (*reports.SalesWindow, error) {
	cond, args := salesConditions(f)

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) FILTER (WHERE status <> 'VOID') as count,
			COALESCE(SUM(total) FILTER (WHERE status <> 'VOID'), 0) as total
		FROM doc_invoices
		WHERE %s
	`, cond)

	w := &reports.SalesWindow{From: f.From, To: f.To}
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, query, args...).Scan(&w.Count, &w.Total); err != nil {
		return nil, fmt.Errorf("sales window: %w", err)
	}

	return w, nil
}

// productUnion selects the shared columns from all three product tables.
const productUnion = `
	SELECT 'HARDWARE' as domain, id, code, name, stock, min_stock, unit_cost, active, deletion_mark
	FROM cat_hardware_products
	UNION ALL
	SELECT 'BLOCKS' as domain, id, code, name, stock, min_stock, unit_cost, active, deletion_mark
	FROM cat_block_products
	UNION ALL
	SELECT 'AGGREGATES' as domain, id, code, name, stock, min_stock, unit_cost, active, deletion_mark
	FROM cat_aggregate_products
`

// GetLowStock lists active products at or below minimum across all domains.
func (r *ReportRepo) GetLowStock(ctx context.Context) ([]reports.LowStockItem, error) {
	query := fmt.Sprintf(`
		SELECT domain, id, code, name, stock, min_stock
		FROM (%s) p
		WHERE active AND NOT deletion_mark AND stock <= min_stock
		ORDER BY domain, code
	`, productUnion)

	var items []reports.LowStockItem
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query); err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}

	return items, nil
}

// GetStockSummary aggregates stock position per domain. Stock value is
// valued at unit cost.
func (r *ReportRepo) GetStockSummary(ctx context.Context) ([]reports.StockSummary, error) {
	query := fmt.Sprintf(`
		SELECT
			domain,
			COUNT(*) as product_count,
			COUNT(*) FILTER (WHERE stock <= min_stock) as low_stock_count,
			COALESCE(SUM((stock::numeric / 10000) * unit_cost), 0) as stock_value
		FROM (%s) p
		WHERE active AND NOT deletion_mark
		GROUP BY domain
		ORDER BY domain
	`, productUnion)

	var summary []reports.StockSummary
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &summary, query); err != nil {
		return nil, fmt.Errorf("stock summary: %w", err)
	}

	return summary, nil
}

// GetMovementTotals aggregates the ledger per movement kind. The total
// quantity is the sum of applied deltas, so clamped adjustments report
// what actually happened to stock.
func (r *ReportRepo) GetMovementTotals(ctx context.Context, f reports.MovementFilter) ([]reports.MovementTotals, error) {
	query := `
		SELECT
			kind,
			COUNT(*) as count,
			COALESCE(SUM(stock_after - stock_before), 0)::bigint as total_quantity
		FROM reg_inventory_movements
		WHERE created_at >= $1 AND created_at < $2
	`
	args := []any{f.From, f.To}
	if f.Domain != nil {
		query += " AND domain = $3"
		args = append(args, *f.Domain)
	}
	query += `
		GROUP BY kind
		ORDER BY kind
	`

	var totals []reports.MovementTotals
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &totals, query, args...); err != nil {
		return nil, fmt.Errorf("movement totals: %w", err)
	}

	return totals, nil
}

// Ensure interface compliance
var _ reports.Repository = (*ReportRepo)(nil)
