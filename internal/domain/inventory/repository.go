package inventory

import (
	"context"
	"time"

	"framasa/internal/core/id"
	"framasa/internal/core/types"
	"framasa/internal/domain"
)

// ProductRepository extends the generic catalog repository with the
// operations the ledger needs: row locking and direct stock writes.
// One instance exists per product domain, each bound to its own table.
type ProductRepository interface {
	domain.CatalogRepository[*Product]

	// GetForUpdate retrieves the product with SELECT FOR UPDATE.
	// Must be called inside a transaction.
	GetForUpdate(ctx context.Context, productID id.ID) (*Product, error)

	// UpdateStock writes the new stock level. Only the ledger calls this,
	// always under the row lock taken by GetForUpdate.
	UpdateStock(ctx context.Context, productID id.ID, stock types.Quantity) error

	// ListLowStock returns active products at or below their minimum.
	ListLowStock(ctx context.Context) ([]*Product, error)
}

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	Domain    *Domain
	ProductID *id.ID
	Kind      *MovementKind
	From      *time.Time
	To        *time.Time

	Limit  int
	Offset int
}

// MovementRepository persists ledger rows. Append-only: there are
// deliberately no update or delete methods.
type MovementRepository interface {
	Create(ctx context.Context, movement *Movement) error
	GetByID(ctx context.Context, movementID id.ID) (*Movement, error)
	List(ctx context.Context, f MovementFilter) ([]*Movement, int64, error)
}
