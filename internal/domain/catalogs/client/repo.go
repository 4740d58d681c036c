package client

import (
	"context"

	"framasa/internal/core/id"
	"framasa/internal/core/types"
	"framasa/internal/domain"
)

// Repository defines the interface for Client persistence.
type Repository interface {
	domain.CatalogRepository[*Client]

	// FindByTaxID retrieves a client by fiscal identifier.
	FindByTaxID(ctx context.Context, taxID string) (*Client, error)

	// GetForUpdate retrieves a client with row lock. The billing
	// service uses this when charging on account.
	GetForUpdate(ctx context.Context, id id.ID) (*Client, error)

	// UpdateBalance writes the new on-account balance. Always called
	// under the row lock taken by GetForUpdate.
	UpdateBalance(ctx context.Context, id id.ID, balance types.Money) error
}
