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
	invoicesTable     = "doc_invoices"
	invoiceLinesTable = "doc_invoice_lines"
	paymentsTable     = "doc_invoice_payments"
)

// InvoiceRepo implements billing.InvoiceRepository.
type InvoiceRepo struct {
	*BaseDocumentRepo[*billing.Invoice]
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txm *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*billing.Invoice](
			txm,
			invoicesTable,
			postgres.ExtractDBColumns[billing.Invoice](),
			func() *billing.Invoice { return &billing.Invoice{} },
		),
	}
}

// List retrieves invoices matching the filter, newest first.
func (r *InvoiceRepo) List(ctx context.Context, f billing.InvoiceFilter) ([]*billing.Invoice, int64, error) {
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

	var invoices []*billing.Invoice
	if err := pgxscan.Select(ctx, querier, &invoices, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("select: %w", err)
	}

	return invoices, total, nil
}

func (r *InvoiceRepo) GetLines(ctx context.Context, invoiceID id.ID) ([]billing.InvoiceLine, error) {
	q := r.Builder().
		Select(
			"line_id", "invoice_id", "line_no",
			"product_domain", "product_id", "product_code", "product_name",
			"quantity", "unit_price", "discount", "subtotal",
		).
		From(invoiceLinesTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []billing.InvoiceLine
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

func (r *InvoiceRepo) SaveLines(ctx context.Context, invoiceID id.ID, lines []billing.InvoiceLine) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + invoiceLinesTable + " WHERE invoice_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, invoiceID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(invoiceLinesTable).
		Columns(
			"line_id", "invoice_id", "line_no",
			"product_domain", "product_id", "product_code", "product_name",
			"quantity", "unit_price", "discount", "subtotal",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, invoiceID, line.LineNo,
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

func (r *InvoiceRepo) GetPayments(ctx context.Context, invoiceID id.ID) ([]billing.Payment, error) {
	q := r.Builder().
		Select("id", "invoice_id", "kind", "amount", "reference", "actor", "created_at").
		From(paymentsTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []billing.Payment
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("get payments: %w", err)
	}

	return payments, nil
}

// AddPayment inserts one payment row. Payments are append-only.
func (r *InvoiceRepo) AddPayment(ctx context.Context, p *billing.Payment) error {
	q := r.Builder().
		Insert(paymentsTable).
		Columns("id", "invoice_id", "kind", "amount", "reference", "actor", "created_at").
		Values(p.ID, p.InvoiceID, p.Kind, p.Amount, p.Reference, p.Actor, p.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert payment: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ billing.InvoiceRepository = (*InvoiceRepo)(nil)
