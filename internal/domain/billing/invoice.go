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

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	// StatusDraft is an invoice under construction, not yet numbered
	// and with no stock impact.
	StatusDraft InvoiceStatus = "DRAFT"
	// StatusPending is an issued invoice awaiting payment.
	StatusPending InvoiceStatus = "PENDING"
	// StatusPartial has received some but not all payment.
	StatusPartial InvoiceStatus = "PARTIAL"
	// StatusPaid is fully settled.
	StatusPaid InvoiceStatus = "PAID"
	// StatusVoid is annulled; stock was compensated back.
	StatusVoid InvoiceStatus = "VOID"
)

// Invoice is a sales document. Lines may reference products from any
// domain; the issuing company is derived from them.
type Invoice struct {
	entity.Document

	Company Company `db:"company" json:"company"`

	ClientID id.ID `db:"client_id" json:"clientId"`
	// ClientName is a snapshot taken at issue time
	ClientName string `db:"client_name" json:"clientName"`

	Subtotal types.Money `db:"subtotal" json:"subtotal"`
	Discount types.Money `db:"discount" json:"discount"`
	Total    types.Money `db:"total" json:"total"`

	// TotalPaid accumulates confirmed payments
	TotalPaid types.Money `db:"total_paid" json:"totalPaid"`

	Status InvoiceStatus `db:"status" json:"status"`

	DueDate *time.Time `db:"due_date" json:"dueDate,omitempty"`

	// VoidReason is set when the invoice is annulled
	VoidReason string `db:"void_reason" json:"voidReason,omitempty"`

	// QuotationID links back to the quotation this invoice was
	// converted from, when applicable
	QuotationID *id.ID `db:"quotation_id" json:"quotationId,omitempty"`

	Lines    []InvoiceLine `db:"-" json:"lines,omitempty"`
	Payments []Payment     `db:"-" json:"payments,omitempty"`
}

// InvoiceLine is one product position on an invoice. Product fields
// are snapshots; later catalog edits do not rewrite history.
type InvoiceLine struct {
	LineID    id.ID `db:"line_id" json:"lineId"`
	InvoiceID id.ID `db:"invoice_id" json:"-"`
	LineNo    int   `db:"line_no" json:"lineNo"`

	ProductDomain inventory.Domain `db:"product_domain" json:"productDomain"`
	ProductID     id.ID            `db:"product_id" json:"productId"`
	ProductCode   string           `db:"product_code" json:"productCode"`
	ProductName   string           `db:"product_name" json:"productName"`

	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Discount  types.Money    `db:"discount" json:"discount"`
	Subtotal  types.Money    `db:"subtotal" json:"subtotal"`
}

// Recalculate derives the line subtotal from quantity and price.
func (l *InvoiceLine) Recalculate() {
	gross := l.Quantity.ToMoney().Mul(l.UnitPrice)
	l.Subtotal = gross.Sub(l.Discount)
}

// Ref returns the product reference of the line.
func (l *InvoiceLine) Ref() inventory.ProductRef {
	return inventory.ProductRef{Domain: l.ProductDomain, ID: l.ProductID}
}

// NewInvoice creates a draft invoice for a client.
func NewInvoice(clientID id.ID) *Invoice {
	return &Invoice{
		Document: entity.NewDocument(),
		ClientID: clientID,
		Status:   StatusDraft,
		Subtotal: types.Zero(),
		Discount: types.Zero(),
		Total:    types.Zero(),
		TotalPaid: types.Zero(),
	}
}

// Outstanding is the unpaid remainder.
func (i *Invoice) Outstanding() types.Money {
	return i.Total.Sub(i.TotalPaid)
}

// RecalculateTotals recomputes line subtotals, document totals and the
// payment-derived status. VOID and DRAFT are sticky; payments move the
// invoice between PENDING, PARTIAL and PAID.
func (i *Invoice) RecalculateTotals() {
	subtotal := types.Zero()
	for idx := range i.Lines {
		i.Lines[idx].Recalculate()
		subtotal = subtotal.Add(i.Lines[idx].Subtotal)
	}
	i.Subtotal = subtotal
	i.Total = subtotal.Sub(i.Discount)

	if i.Status == StatusVoid || i.Status == StatusDraft {
		return
	}
	switch {
	case i.TotalPaid.IsZero():
		i.Status = StatusPending
	case i.TotalPaid.GreaterThanOrEqual(i.Total):
		i.Status = StatusPaid
	default:
		i.Status = StatusPartial
	}
}

// AcceptsPayments reports whether the invoice can take more money.
func (i *Invoice) AcceptsPayments() bool {
	return i.Status == StatusPending || i.Status == StatusPartial
}

// Validate implements entity.Validatable.
func (i *Invoice) Validate(ctx context.Context) error {
	if err := i.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(i.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}
	if len(i.Lines) == 0 {
		return apperror.NewValidation("invoice must have at least one line").
			WithDetail("field", "lines")
	}
	if i.Discount.IsNegative() {
		return apperror.NewValidation("discount cannot be negative").
			WithDetail("field", "discount")
	}
	for idx := range i.Lines {
		if err := i.Lines[idx].validate(idx); err != nil {
			return err
		}
	}
	return nil
}

func (l *InvoiceLine) validate(idx int) error {
	detail := func(e *apperror.AppError) error {
		return e.WithDetail("line", idx+1)
	}
	if !l.ProductDomain.Valid() {
		return detail(apperror.NewValidation(fmt.Sprintf("unknown product domain: %q", l.ProductDomain)))
	}
	if id.IsNil(l.ProductID) {
		return detail(apperror.NewValidation("product is required"))
	}
	if !l.Quantity.IsPositive() {
		return detail(apperror.NewInvalidQuantity("line quantity must be positive"))
	}
	if l.ProductDomain.WholeUnitsOnly() && !l.Quantity.IsWholeUnits() {
		return detail(apperror.NewInvalidQuantity("quantity must be whole units for piece-counted products"))
	}
	if l.UnitPrice.IsNegative() {
		return detail(apperror.NewValidation("unit price cannot be negative"))
	}
	if l.Discount.IsNegative() {
		return detail(apperror.NewValidation("line discount cannot be negative"))
	}
	return nil
}

// Domains returns the product domains present on the lines.
func (i *Invoice) Domains() []inventory.Domain {
	out := make([]inventory.Domain, 0, len(i.Lines))
	for idx := range i.Lines {
		out = append(out, i.Lines[idx].ProductDomain)
	}
	return out
}
