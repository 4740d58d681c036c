package billing

import (
	"context"
	"fmt"
	"time"

	"framasa/internal/core/apperror"
	"framasa/internal/core/entity"
	"framasa/internal/core/id"
	"framasa/internal/core/types"
	"framasa/internal/domain/inventory"
)

// QuotationStatus is the lifecycle state of a quotation.
type QuotationStatus string

const (
	QuoteDraft    QuotationStatus = "DRAFT"
	QuoteSent     QuotationStatus = "SENT"
	QuoteAccepted QuotationStatus = "ACCEPTED"
	QuoteRejected QuotationStatus = "REJECTED"
	QuoteExpired  QuotationStatus = "EXPIRED"
)

// Quotation is a price offer that can later be converted into an
// invoice. Quotations never touch stock.
type Quotation struct {
	entity.Document

	Company Company `db:"company" json:"company"`

	ClientID   id.ID  `db:"client_id" json:"clientId"`
	ClientName string `db:"client_name" json:"clientName"`

	Subtotal types.Money `db:"subtotal" json:"subtotal"`
	Discount types.Money `db:"discount" json:"discount"`
	Total    types.Money `db:"total" json:"total"`

	Status QuotationStatus `db:"status" json:"status"`

	// ValidUntil bounds acceptance; past it the quote auto-expires
	ValidUntil *time.Time `db:"valid_until" json:"validUntil,omitempty"`

	Terms string `db:"terms" json:"terms,omitempty"`

	SentAt     *time.Time `db:"sent_at" json:"sentAt,omitempty"`
	DecidedAt  *time.Time `db:"decided_at" json:"decidedAt,omitempty"`

	// InvoiceID is set once the quotation is converted
	InvoiceID *id.ID `db:"invoice_id" json:"invoiceId,omitempty"`

	Lines []QuotationLine `db:"-" json:"lines,omitempty"`
}

// QuotationLine mirrors InvoiceLine; snapshots are copied verbatim on
// conversion.
type QuotationLine struct {
	LineID      id.ID `db:"line_id" json:"lineId"`
	QuotationID id.ID `db:"quotation_id" json:"-"`
	LineNo      int   `db:"line_no" json:"lineNo"`

	ProductDomain inventory.Domain `db:"product_domain" json:"productDomain"`
	ProductID     id.ID            `db:"product_id" json:"productId"`
	ProductCode   string           `db:"product_code" json:"productCode"`
	ProductName   string           `db:"product_name" json:"productName"`

	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Discount  types.Money    `db:"discount" json:"discount"`
	Subtotal  types.Money    `db:"subtotal" json:"subtotal"`
}

// Recalculate derives the line subtotal.
func (l *QuotationLine) Recalculate() {
	l.Subtotal = l.Quantity.ToMoney().Mul(l.UnitPrice).Sub(l.Discount)
}

// Ref returns the product reference of the line.
func (l *QuotationLine) Ref() inventory.ProductRef {
	return inventory.ProductRef{Domain: l.ProductDomain, ID: l.ProductID}
}

// NewQuotation creates a draft quotation for a client.
func NewQuotation(clientID id.ID) *Quotation {
	return &Quotation{
		Document: entity.NewDocument(),
		ClientID: clientID,
		Status:   QuoteDraft,
		Subtotal: types.Zero(),
		Discount: types.Zero(),
		Total:    types.Zero(),
	}
}

// RecalculateTotals recomputes line subtotals and document totals.
func (q *Quotation) RecalculateTotals() {
	subtotal := types.Zero()
	for idx := range q.Lines {
		q.Lines[idx].Recalculate()
		subtotal = subtotal.Add(q.Lines[idx].Subtotal)
	}
	q.Subtotal = subtotal
	q.Total = subtotal.Sub(q.Discount)
}

// IsExpired reports whether the validity window has passed. Only
// quotes still awaiting a decision can expire.
func (q *Quotation) IsExpired(now time.Time) bool {
	if q.ValidUntil == nil {
		return false
	}
	if q.Status != QuoteDraft && q.Status != QuoteSent {
		return false
	}
	return now.After(*q.ValidUntil)
}

// Converted reports whether an invoice was already produced.
func (q *Quotation) Converted() bool {
	return q.InvoiceID != nil
}

func (q *Quotation) transitionErr(attempted string) error {
	return apperror.NewInvalidStateTransition("quotation", string(q.Status), attempted)
}

// MarkSent moves DRAFT to SENT.
func (q *Quotation) MarkSent(now time.Time) error {
	if q.Status != QuoteDraft {
		return q.transitionErr("send")
	}
	if q.IsExpired(now) {
		q.Status = QuoteExpired
		return q.transitionErr("send")
	}
	q.Status = QuoteSent
	q.SentAt = &now
	return nil
}

// MarkAccepted moves the quotation to ACCEPTED, expiring first when
// overdue. Any status but ACCEPTED and EXPIRED may accept; a client can
// accept straight from DRAFT or change their mind after a rejection.
func (q *Quotation) MarkAccepted(now time.Time) error {
	if q.IsExpired(now) {
		q.Status = QuoteExpired
		return q.transitionErr("accept")
	}
	if q.Status == QuoteAccepted || q.Status == QuoteExpired {
		return q.transitionErr("accept")
	}
	q.Status = QuoteAccepted
	q.DecidedAt = &now
	return nil
}

// MarkRejected moves the quotation to REJECTED. Any status may reject
// except REJECTED itself, and never once an invoice exists.
func (q *Quotation) MarkRejected(now time.Time) error {
	if q.Converted() {
		return apperror.NewConflict("quotation is already converted").
			WithDetail("invoice_id", q.InvoiceID.String())
	}
	if q.Status == QuoteRejected {
		return q.transitionErr("reject")
	}
	q.Status = QuoteRejected
	q.DecidedAt = &now
	return nil
}

// CanConvert checks whether an invoice may be produced.
func (q *Quotation) CanConvert() error {
	if q.Converted() {
		return apperror.NewConflict("quotation is already converted").
			WithDetail("invoice_id", q.InvoiceID.String())
	}
	if q.Status != QuoteAccepted {
		return q.transitionErr("convert")
	}
	return nil
}

// Validate implements entity.Validatable.
func (q *Quotation) Validate(ctx context.Context) error {
	if err := q.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(q.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}
	if len(q.Lines) == 0 {
		return apperror.NewValidation("quotation must have at least one line").
			WithDetail("field", "lines")
	}
	if q.Discount.IsNegative() {
		return apperror.NewValidation("discount cannot be negative").
			WithDetail("field", "discount")
	}
	for idx := range q.Lines {
		l := q.Lines[idx]
		if !l.ProductDomain.Valid() {
			return apperror.NewValidation(fmt.Sprintf("unknown product domain: %q", l.ProductDomain)).
				WithDetail("line", idx+1)
		}
		if id.IsNil(l.ProductID) {
			return apperror.NewValidation("product is required").WithDetail("line", idx+1)
		}
		if !l.Quantity.IsPositive() {
			return apperror.NewInvalidQuantity("line quantity must be positive").WithDetail("line", idx+1)
		}
		if l.ProductDomain.WholeUnitsOnly() && !l.Quantity.IsWholeUnits() {
			return apperror.NewInvalidQuantity("quantity must be whole units for piece-counted products").
				WithDetail("line", idx+1)
		}
		if l.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").WithDetail("line", idx+1)
		}
	}
	return nil
}

// Domains returns the product domains present on the lines.
func (q *Quotation) Domains() []inventory.Domain {
	out := make([]inventory.Domain, 0, len(q.Lines))
	for idx := range q.Lines {
		out = append(out, q.Lines[idx].ProductDomain)
	}
	return out
}
