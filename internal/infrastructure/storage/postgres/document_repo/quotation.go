package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"framasa/internal/core/id"
	"framasa/internal/domain/billing"
	"framasa/internal/infrastructure/storage/postgres"
)

const (
	quotationsTable     = "doc_quotations"
	quotationLinesTable = "doc_quotation_lines"
)

// QuotationRepo implements billing.QuotationRepository.
type QuotationRepo struct {
	*BaseDocumentRepo[*billing.Quotation]
}

// NewQuotationRepo creates a new quotation repository.
func NewQuotationRepo(txm *postgres.TxManager) *QuotationRepo {
	return &QuotationRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*billing.Quotation](
			txm,
			quotationsTable,
			postgres.ExtractDBColumns[billing.Quotation](),
			func() *billing.Quotation { return &billing.Quotation{} },
		),
	}
}

// List retrieves quotations matching the filter, newest first.
func (r *QuotationRepo) List(ctx context.Context, f billing.QuotationFilter) ([]*billing.Quotation, int64, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"deletion_mark": false})

	if f.Status != nil {
		q = q.Where(squirrel.Eq{"status": *f.Status})
	}
	if f.Company != nil {
		q = q.Where(squirrel.Eq{"company": *f.Company})
	}
	if f.ClientID != nil {
		q = q.Where(squirrel.Eq{"client_id": *f.ClientID})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{"date": *f.To})
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"client_name": pattern},
		})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("date DESC", "number DESC")
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

	var quotes []*billing.Quotation
	if err := pgxscan.Select(ctx, querier, &quotes, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("select: %w", err)
	}

	return quotes, total, nil
}

func (r *QuotationRepo) GetLines(ctx context.Context, quotationID id.ID) ([]billing.QuotationLine, error) {
	q := r.Builder().
		Select(
			"line_id", "quotation_id", "line_no",
			"product_domain", "product_id", "product_code", "product_name",
			"quantity", "unit_price", "discount", "subtotal",
		).
		From(quotationLinesTable).
		Where(squirrel.Eq{"quotation_id": quotationID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []billing.QuotationLine
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

func (r *QuotationRepo) SaveLines(ctx context.Context, quotationID id.ID, lines []billing.QuotationLine) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + quotationLinesTable + " WHERE quotation_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, quotationID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(quotationLinesTable).
		Columns(
			"line_id", "quotation_id", "line_no",
			"product_domain", "product_id", "product_code", "product_name",
			"quantity", "unit_price", "discount", "subtotal",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, quotationID, line.LineNo,
			line.ProductDomain, line.ProductID, line.ProductCode, line.ProductName,
			line.Quantity, line.UnitPrice, line.Discount, line.Subtotal,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ billing.QuotationRepository = (*QuotationRepo)(nil)
