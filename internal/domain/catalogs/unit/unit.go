// Package unit provides the measurement unit catalog (pieces, bags,
// cubic meters and so on).
package unit

import (
	"context"

	"framasa/internal/core/apperror"
	"framasa/internal/core/entity"
	"framasa/internal/core/tx"
	"framasa/internal/domain"
)

// Unit is a unit of measure referenced by hardware products.
type Unit struct {
	entity.Catalog

	// Symbol is the short printable form (e.g. "pz", "m3", "qq")
	Symbol string `db:"symbol" json:"symbol"`

	// Fractional allows non-whole quantities for products measured in
	// this unit
	Fractional bool `db:"fractional" json:"fractional"`
}

// NewUnit creates a new Unit.
func NewUnit(code, name, symbol string) *Unit {
	return &Unit{
		Catalog: entity.NewCatalog(code, name),
		Symbol:  symbol,
	}
}

func (u *Unit) Validate(ctx context.Context) error {
	if err := u.Catalog.Validate(ctx); err != nil {
		return err
	}
	if u.Symbol == "" {
		return apperror.NewValidation("symbol is required").
			WithDetail("field", "symbol")
	}
	return nil
}

// Repository is the persistence contract for units.
type Repository interface {
	domain.CatalogRepository[*Unit]
}

// NewService creates the unit service.
func NewService(repo Repository, txManager tx.Manager) *domain.CatalogService[*Unit] {
	return domain.NewCatalogService(domain.CatalogServiceConfig[*Unit]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "unit",
	})
}
