package dto

import (
	"time"

	"framasa/internal/core/apperror"
	"framasa/internal/core/id"
	"framasa/internal/core/types"
	"framasa/internal/domain/billing"
	"framasa/internal/domain/inventory"
)

// DocumentLineRequest is one product position on an invoice or
// quotation request.
type DocumentLineRequest struct {
	Domain    string         `json:"domain" binding:"required"`
	ProductID string         `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity"`
	// UnitPrice overrides the catalog sale price when positive
	UnitPrice types.Money `json:"unitPrice"`
	Discount  types.Money `json:"discount"`
}

func (r *DocumentLineRequest) toInput(lineNo int) (billing.InvoiceLineInput, error) {
	d, err := inventory.ParseDomain(r.Domain)
	if err != nil {
		return billing.InvoiceLineInput{}, err
	}
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return billing.InvoiceLineInput{}, apperror.NewValidation("invalid product id").
			WithDetail("line", lineNo)
	}
	ref, err := inventory.NewProductRef(d, productID)
	if err != nil {
		return billing.InvoiceLineInput{}, err
	}
	return billing.InvoiceLineInput{
		Ref:       ref,
		Quantity:  r.Quantity,
		UnitPrice: r.UnitPrice,
		Discount:  r.Discount,
	}, nil
}

func toLineInputs(lines []DocumentLineRequest) ([]billing.InvoiceLineInput, error) {
	out := make([]billing.InvoiceLineInput, 0, len(lines))
	for i, l := range lines {
		in, err := l.toInput(i + 1)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

// --- Invoice ---

// CreateInvoiceRequest issues a new invoice.
type CreateInvoiceRequest struct {
	ClientID string                `json:"clientId" binding:"required"`
	Lines    []DocumentLineRequest `json:"lines" binding:"required,min=1"`
	Discount types.Money           `json:"discount"`
	DueDate  *time.Time            `json:"dueDate"`
	Comment  string                `json:"comment"`
}

// ToInput converts to the domain request shape.
func (r *CreateInvoiceRequest) ToInput() (billing.InvoiceInput, error) {
	clientID, err := id.Parse(r.ClientID)
	if err != nil {
		return billing.InvoiceInput{}, apperror.NewValidation("invalid client id")
	}
	lines, err := toLineInputs(r.Lines)
	if err != nil {
		return billing.InvoiceInput{}, err
	}
	return billing.InvoiceInput{
		ClientID: clientID,
		Lines:    lines,
		Discount: r.Discount,
		DueDate:  r.DueDate,
		Comment:  r.Comment,
	}, nil
}

// PaymentRequest is one settlement in an AddPayments call.
type PaymentRequest struct {
	Kind      string      `json:"kind" binding:"required"`
	Amount    types.Money `json:"amount"`
	Reference string      `json:"reference"`
}

// AddPaymentsRequest registers a batch of payments on an invoice.
type AddPaymentsRequest struct {
	Payments []PaymentRequest `json:"payments" binding:"required,min=1"`
}

// ToInputs converts to domain payment inputs.
func (r *AddPaymentsRequest) ToInputs() ([]billing.PaymentInput, error) {
	out := make([]billing.PaymentInput, 0, len(r.Payments))
	for _, p := range r.Payments {
		kind, err := billing.ParsePaymentKind(p.Kind)
		if err != nil {
			return nil, err
		}
		out = append(out, billing.PaymentInput{
			Kind:      kind,
			Amount:    p.Amount,
			Reference: p.Reference,
		})
	}
	return out, nil
}

// VoidInvoiceRequest annuls an invoice.
type VoidInvoiceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// InvoiceListRequest filters invoice list queries.
type InvoiceListRequest struct {
	Status   string `form:"status"`
	Company  string `form:"company"`
	ClientID string `form:"clientId"`
	From     string `form:"from"`
	To       string `form:"to"`
	Search   string `form:"search"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

// --- Quotation ---

// CreateQuotationRequest creates a new quotation.
type CreateQuotationRequest struct {
	ClientID   string                `json:"clientId" binding:"required"`
	Lines      []DocumentLineRequest `json:"lines" binding:"required,min=1"`
	Discount   types.Money           `json:"discount"`
	ValidUntil *time.Time            `json:"validUntil"`
	Terms      string                `json:"terms"`
	Comment    string                `json:"comment"`
}

// ToInput converts to the domain request shape.
func (r *CreateQuotationRequest) ToInput() (billing.QuotationInput, error) {
	clientID, err := id.Parse(r.ClientID)
	if err != nil {
		return billing.QuotationInput{}, apperror.NewValidation("invalid client id")
	}
	lines, err := toLineInputs(r.Lines)
	if err != nil {
		return billing.QuotationInput{}, err
	}
	return billing.QuotationInput{
		ClientID:   clientID,
		Lines:      lines,
		Discount:   r.Discount,
		ValidUntil: r.ValidUntil,
		Terms:      r.Terms,
		Comment:    r.Comment,
	}, nil
}

// QuotationListRequest filters quotation list queries.
type QuotationListRequest struct {
	Status   string `form:"status"`
	Company  string `form:"company"`
	ClientID string `form:"clientId"`
	From     string `form:"from"`
	To       string `form:"to"`
	Search   string `form:"search"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}
