package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"framasa/internal/core/apperror"
	"framasa/internal/core/id"
	"framasa/internal/core/types"
	"framasa/internal/domain/catalogs/client"
	"framasa/internal/infrastructure/storage/postgres"
)

const clientsTable = "cat_clients"

// ClientRepo implements client.Repository.
type ClientRepo struct {
	*BaseCatalogRepo[*client.Client]
}

// NewClientRepo creates a new client repository.
func NewClientRepo(txm *postgres.TxManager) *ClientRepo {
	return &ClientRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*client.Client](
			txm,
			clientsTable,
			postgres.ExtractDBColumns[client.Client](),
			func() *client.Client { return &client.Client{} },
		),
	}
}

// FindByTaxID retrieves a client by fiscal identifier.
func (r *ClientRepo) FindByTaxID(ctx context.Context, taxID string) (*client.Client, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"tax_id": taxID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	c, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("client", taxID)
		}
		return nil, err
	}
	return c, nil
}

// UpdateBalance writes the new on-account balance. Always called under
// the row lock taken by GetForUpdate.
func (r *ClientRepo) UpdateBalance(ctx context.Context, clientID id.ID, balance types.Money) error {
	q := r.Builder().
		Update(clientsTable).
		Set("balance", balance).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": clientID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update balance: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ client.Repository = (*ClientRepo)(nil)
