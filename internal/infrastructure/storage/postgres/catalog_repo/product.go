package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"framasa/internal/core/id"
	"framasa/internal/core/types"
	"framasa/internal/domain/inventory"
	"framasa/internal/infrastructure/storage/postgres"
)

// One table per product domain. The schemas are identical; domain
// specific attributes are nullable columns.
const (
	hardwareProductsTable  = "cat_hardware_products"
	blockProductsTable     = "cat_block_products"
	aggregateProductsTable = "cat_aggregate_products"
)

// ProductRepo implements inventory.ProductRepository for one domain.
type ProductRepo struct {
	*BaseCatalogRepo[*inventory.Product]
	domain inventory.Domain
}

// NewProductRepo creates a product repository bound to the domain's table.
func NewProductRepo(txm *postgres.TxManager, d inventory.Domain) (*ProductRepo, error) {
	var table string
	switch d {
	case inventory.DomainHardware:
		table = hardwareProductsTable
	case inventory.DomainBlocks:
		table = blockProductsTable
	case inventory.DomainAggregates:
		table = aggregateProductsTable
	default:
		return nil, fmt.Errorf("unknown product domain: %s", d)
	}

	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*inventory.Product](
			txm,
			table,
			postgres.ExtractDBColumns[inventory.Product](),
			func() *inventory.Product { return &inventory.Product{} },
		),
		domain: d,
	}, nil
}

// UpdateStock writes the new stock level. Only the ledger calls this,
// under the row lock taken by GetForUpdate.
func (r *ProductRepo) UpdateStock(ctx context.Context, productID id.ID, stock types.Quantity) error {
	q := r.Builder().
		Update(r.tableName).
		Set("stock", stock).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update stock: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update stock: %w", err)
	}

	return nil
}

// ListLowStock returns active products at or below their minimum.
func (r *ProductRepo) ListLowStock(ctx context.Context) ([]*inventory.Product, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Eq{"active": true}).
		Where(squirrel.Expr("stock <= min_stock")).
		OrderBy("code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []*inventory.Product
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &products, sql, args...); err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}

	return products, nil
}

// Ensure interface compliance.
var _ inventory.ProductRepository = (*ProductRepo)(nil)
