// Package category provides the hierarchical product category catalog
// used by the hardware line.
package category

import (
	"context"

	"framasa/internal/core/entity"
	"framasa/internal/core/tx"
	"framasa/internal/domain"
)

// Category groups hardware products. Categories form a tree via the
// base catalog ParentID/IsFolder fields.
type Category struct {
	entity.Catalog

	Description *string `db:"description" json:"description,omitempty"`
}

// NewCategory creates a new Category.
func NewCategory(code, name string) *Category {
	return &Category{Catalog: entity.NewCatalog(code, name)}
}

func (c *Category) Validate(ctx context.Context) error {
	return c.Catalog.Validate(ctx)
}

// Repository is the persistence contract for categories.
type Repository interface {
	domain.CatalogRepository[*Category]
}

// NewService creates the category service.
func NewService(repo Repository, txManager tx.Manager) *domain.CatalogService[*Category] {
	return domain.NewCatalogService(domain.CatalogServiceConfig[*Category]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "category",
	})
}
