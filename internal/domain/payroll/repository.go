package payroll

import (
	"context"
	"time"

	"framasa/internal/core/id"
)

// Filter narrows payroll sheet list queries.
type Filter struct {
	Status *SheetStatus
	From   *time.Time
	To     *time.Time

	Limit  int
	Offset int
}

// Repository persists payroll sheets and their lines.
type Repository interface {
	Create(ctx context.Context, s *Sheet) error
	Update(ctx context.Context, s *Sheet) error

	GetByID(ctx context.Context, sheetID id.ID) (*Sheet, error)
	GetByNumber(ctx context.Context, number string) (*Sheet, error)
	GetForUpdate(ctx context.Context, sheetID id.ID) (*Sheet, error)

	List(ctx context.Context, f Filter) ([]*Sheet, int64, error)

	GetLines(ctx context.Context, sheetID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, sheetID id.ID, lines []Line) error
}
