package reports

import (
	"context"
	"fmt"
	"time"

	"framasa/internal/core/apperror"
	"framasa/internal/core/types"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func normalizePeriod(from, to time.Time) (time.Time, time.Time, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}
	if from.After(to) {
		return from, to, apperror.NewValidation("period start must not be after period end")
	}
	return from, to, nil
}

// GetSalesStats summarizes invoicing for a period, defaulting to the
// last month.
func (s *Service) GetSalesStats(ctx context.Context, f SalesFilter) (*SalesStats, error) {
	var err error
	f.From, f.To, err = normalizePeriod(f.From, f.To)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.GetSalesStats(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("get sales stats: %w", err)
	}
	stats.From, stats.To = f.From, f.To
	return stats, nil
}

// GetSalesTrend compares the requested period against the preceding
// window of equal length.
func (s *Service) GetSalesTrend(ctx context.Context, f SalesFilter) (*SalesTrend, error) {
	var err error
	f.From, f.To, err = normalizePeriod(f.From, f.To)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetSalesWindow(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("get sales window: %w", err)
	}

	span := f.To.Sub(f.From)
	prev := f
	prev.To = f.From
	prev.From = f.From.Add(-span)
	previous, err := s.repo.GetSalesWindow(ctx, prev)
	if err != nil {
		return nil, fmt.Errorf("get previous sales window: %w", err)
	}

	trend := &SalesTrend{Current: *current, Previous: *previous}
	if previous.Total.IsPositive() {
		growth := current.Total.Sub(previous.Total).
			Div(previous.Total).
			Mul(types.MustMoney("100")).
			Round(2)
		trend.GrowthPct = &growth
	}
	return trend, nil
}

// GetLowStock lists products at or below minimum across all domains.
func (s *Service) GetLowStock(ctx context.Context) ([]LowStockItem, error) {
	items, err := s.repo.GetLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("get low stock: %w", err)
	}
	return items, nil
}

// GetStockSummary aggregates stock position per domain.
func (s *Service) GetStockSummary(ctx context.Context) ([]StockSummary, error) {
	summary, err := s.repo.GetStockSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("get stock summary: %w", err)
	}
	return summary, nil
}

// GetMovementTotals aggregates ledger activity per movement kind.
func (s *Service) GetMovementTotals(ctx context.Context, f MovementFilter) ([]MovementTotals, error) {
	var err error
	f.From, f.To, err = normalizePeriod(f.From, f.To)
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.GetMovementTotals(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("get movement totals: %w", err)
	}
	return totals, nil
}
