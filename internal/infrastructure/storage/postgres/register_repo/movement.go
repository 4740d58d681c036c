// Package register_repo provides the PostgreSQL implementation of the
// append-only stock movement ledger.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"framasa/internal/core/apperror"
	"framasa/internal/core/id"
	"framasa/internal/domain/inventory"
	"framasa/internal/infrastructure/storage/postgres"
)

const movementsTable = "reg_inventory_movements"

var movementCols = []string{
	"id", "domain", "product_id", "product_code", "product_name",
	"kind", "quantity", "stock_before", "stock_after",
	"reason", "actor", "created_at",
}

// MovementRepo implements inventory.MovementRepository. The table has
// no UPDATE or DELETE path; rows are inserted once and read forever.
type MovementRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewMovementRepo creates a new movement ledger repository.
func NewMovementRepo(txm *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a single ledger row.
func (r *MovementRepo) Create(ctx context.Context, m *inventory.Movement) error {
	q := r.builder.Insert(movementsTable).
		Columns(movementCols...).
		Values(
			m.ID, m.Domain, m.ProductID, m.ProductCode, m.ProductName,
			m.Kind, m.Quantity, m.StockBefore, m.StockAfter,
			m.Reason, m.Actor, m.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	return nil
}

// GetByID retrieves a single ledger row.
func (r *MovementRepo) GetByID(ctx context.Context, movementID id.ID) (*inventory.Movement, error) {
	q := r.builder.Select(movementCols...).
		From(movementsTable).
		Where(squirrel.Eq{"id": movementID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m inventory.Movement
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("movement", movementID.String())
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}

	return &m, nil
}

// List retrieves ledger rows matching the filter, newest first, along
// with the total count before paging.
func (r *MovementRepo) List(ctx context.Context, f inventory.MovementFilter) ([]*inventory.Movement, int64, error) {
	q := r.builder.Select(movementCols...).From(movementsTable)
	q = r.applyFilter(q, f)

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	q = q.OrderBy("created_at DESC", "id DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var movements []*inventory.Movement
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("select movements: %w", err)
	}

	return movements, total, nil
}

func (r *MovementRepo) applyFilter(q squirrel.SelectBuilder, f inventory.MovementFilter) squirrel.SelectBuilder {
	if f.Domain != nil {
		q = q.Where(squirrel.Eq{"domain": *f.Domain})
	}
	if f.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *f.ProductID})
	}
	if f.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *f.Kind})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *f.To})
	}
	return q
}

// Ensure interface compliance.
var _ inventory.MovementRepository = (*MovementRepo)(nil)
