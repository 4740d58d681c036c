package inventory

import (
	"fmt"
	"time"

	"framasa/internal/core/apperror"
	"framasa/internal/core/id"
	"framasa/internal/core/types"
)

// MovementKind classifies a stock movement. Wire values match the
// historical ledger so existing integrations keep working.
type MovementKind string

const (
	// MovementEntry increases stock (purchases, production output).
	MovementEntry MovementKind = "ENTRADA"
	// MovementExit decreases stock (sales, consumption).
	MovementExit MovementKind = "SALIDA"
	// MovementAdjustment applies a signed correction after a physical count.
	MovementAdjustment MovementKind = "AJUSTE"
	// MovementTransfer decreases stock for goods sent to another site.
	MovementTransfer MovementKind = "TRANSFERENCIA"
	// MovementReturn increases stock for returned goods.
	MovementReturn MovementKind = "DEVOLUCION"
)

// ParseMovementKind validates a movement kind string.
func ParseMovementKind(s string) (MovementKind, error) {
	switch MovementKind(s) {
	case MovementEntry, MovementExit, MovementAdjustment, MovementTransfer, MovementReturn:
		return MovementKind(s), nil
	}
	return "", apperror.NewValidation(fmt.Sprintf("unknown movement kind: %q", s)).
		WithDetail("field", "kind")
}

// Inbound reports whether the kind increases stock.
func (k MovementKind) Inbound() bool {
	return k == MovementEntry || k == MovementReturn
}

// Outbound reports whether the kind decreases stock.
func (k MovementKind) Outbound() bool {
	return k == MovementExit || k == MovementTransfer
}

// Movement is one immutable row in the stock ledger. Movements are
// append-only: there is no update or delete path anywhere in the
// system. Corrections are expressed as new AJUSTE movements.
type Movement struct {
	ID     id.ID  `db:"id" json:"id"`
	Domain Domain `db:"domain" json:"domain"`

	ProductID id.ID `db:"product_id" json:"productId"`

	// Denormalized product snapshot, stable even if the product is
	// renamed later.
	ProductCode string `db:"product_code" json:"productCode"`
	ProductName string `db:"product_name" json:"productName"`

	Kind MovementKind `db:"kind" json:"kind"`

	// Quantity is positive for all kinds except AJUSTE, where it is the
	// signed requested delta (which may differ from the applied delta
	// when the adjustment would take stock below zero).
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Stock snapshots taken under the product row lock.
	StockBefore types.Quantity `db:"stock_before" json:"stockBefore"`
	StockAfter  types.Quantity `db:"stock_after" json:"stockAfter"`

	Reason string `db:"reason" json:"reason,omitempty"`
	Actor  string `db:"actor" json:"actor"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Ref returns the product reference this movement touched.
func (m *Movement) Ref() ProductRef {
	return ProductRef{Domain: m.Domain, ID: m.ProductID}
}

// AppliedDelta is the actual change to stock recorded by this movement.
func (m *Movement) AppliedDelta() types.Quantity {
	return m.StockAfter.Sub(m.StockBefore)
}
