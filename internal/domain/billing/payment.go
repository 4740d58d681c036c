package billing

import (
	"fmt"
	"time"

	"framasa/internal/core/apperror"
	"framasa/internal/core/id"
	"framasa/internal/core/types"
)

// PaymentKind is the settlement method of a payment.
type PaymentKind string

const (
	PaymentCash PaymentKind = "CASH"
	PaymentCard PaymentKind = "CARD"
	// PaymentOnAccount charges the client credit line instead of
	// collecting money immediately.
	PaymentOnAccount PaymentKind = "ON_ACCOUNT"
)

// ParsePaymentKind validates a payment kind string.
func ParsePaymentKind(s string) (PaymentKind, error) {
	switch PaymentKind(s) {
	case PaymentCash, PaymentCard, PaymentOnAccount:
		return PaymentKind(s), nil
	}
	return "", apperror.NewValidation(fmt.Sprintf("unknown payment kind: %q", s)).
		WithDetail("field", "kind")
}

// Payment is one settlement against an invoice. Payments are
// append-only; corrections go through voiding the invoice.
type Payment struct {
	ID        id.ID       `db:"id" json:"id"`
	InvoiceID id.ID       `db:"invoice_id" json:"invoiceId"`
	Kind      PaymentKind `db:"kind" json:"kind"`
	Amount    types.Money `db:"amount" json:"amount"`

	// Reference holds an external identifier (card voucher, receipt)
	Reference string `db:"reference" json:"reference,omitempty"`

	Actor     string    `db:"actor" json:"actor"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// PaymentInput is the request shape for adding payments.
type PaymentInput struct {
	Kind      PaymentKind `json:"kind"`
	Amount    types.Money `json:"amount"`
	Reference string      `json:"reference,omitempty"`
}

func (p PaymentInput) validate() error {
	if _, err := ParsePaymentKind(string(p.Kind)); err != nil {
		return err
	}
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount")
	}
	return nil
}
