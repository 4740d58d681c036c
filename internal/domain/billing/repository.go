package billing

import (
	"context"
	"time"

	"framasa/internal/core/id"
)

// InvoiceFilter narrows invoice list queries.
type InvoiceFilter struct {
	Status   *InvoiceStatus
	Company  *Company
	ClientID *id.ID
	From     *time.Time
	To       *time.Time
	Search   string

	Limit  int
	Offset int
}

// InvoiceRepository persists invoices, their lines and payments.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	Update(ctx context.Context, inv *Invoice) error

	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)

	// GetForUpdate locks the invoice row for payment and void flows.
	GetForUpdate(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	List(ctx context.Context, f InvoiceFilter) ([]*Invoice, int64, error)

	GetLines(ctx context.Context, invoiceID id.ID) ([]InvoiceLine, error)
	SaveLines(ctx context.Context, invoiceID id.ID, lines []InvoiceLine) error

	GetPayments(ctx context.Context, invoiceID id.ID) ([]Payment, error)
	AddPayment(ctx context.Context, p *Payment) error
}

// QuotationFilter narrows quotation list queries.
type QuotationFilter struct {
	Status   *QuotationStatus
	Company  *Company
	ClientID *id.ID
	From     *time.Time
	To       *time.Time
	Search   string

	Limit  int
	Offset int
}

// QuotationRepository persists quotations and their lines.
type QuotationRepository interface {
	Create(ctx context.Context, q *Quotation) error
	Update(ctx context.Context, q *Quotation) error

	GetByID(ctx context.Context, quotationID id.ID) (*Quotation, error)
	GetByNumber(ctx context.Context, number string) (*Quotation, error)
	GetForUpdate(ctx context.Context, quotationID id.ID) (*Quotation, error)

	List(ctx context.Context, f QuotationFilter) ([]*Quotation, int64, error)

	GetLines(ctx context.Context, quotationID id.ID) ([]QuotationLine, error)
	SaveLines(ctx context.Context, quotationID id.ID, lines []QuotationLine) error
}
