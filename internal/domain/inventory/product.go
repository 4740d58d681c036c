package inventory

import (
	"context"

	"framasa/internal/core/apperror"
	"framasa/internal/core/entity"
	"framasa/internal/core/types"
)

// Product is a stock-tracked item in one of the product domains.
// All three domains share this shape; domain-specific classification
// fields are simply left empty where they do not apply.
//
// Stock is never written directly by callers. The only authorized
// mutator is Ledger.RecordMovement.
type Product struct {
	entity.BaseCatalog

	Domain Domain `db:"domain" json:"domain"`

	// Code is unique within a domain (e.g. "MART-001")
	Code        string `db:"code" json:"code"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`

	// Hardware classification
	CategoryID *string `db:"category_id" json:"categoryId,omitempty"`
	UnitID     *string `db:"unit_id" json:"unitId,omitempty"`

	// Block classification
	BlockType  string `db:"block_type" json:"blockType,omitempty"`
	Dimensions string `db:"dimensions" json:"dimensions,omitempty"`

	// Aggregate classification
	AggregateType string      `db:"aggregate_type" json:"aggregateType,omitempty"`
	Granulometry  string      `db:"granulometry" json:"granulometry,omitempty"`
	Location      string      `db:"location" json:"location,omitempty"`
	MoisturePct   types.Money `db:"moisture_pct" json:"moisturePct"`
	Quality       string      `db:"quality" json:"quality,omitempty"`
	Supplier      string      `db:"supplier" json:"supplier,omitempty"`

	// Pricing
	SalePrice types.Money `db:"sale_price" json:"salePrice"`
	UnitCost  types.Money `db:"unit_cost" json:"unitCost"`

	// Stock levels (mutated only through the ledger)
	Stock    types.Quantity `db:"stock" json:"stock"`
	MinStock types.Quantity `db:"min_stock" json:"minStock"`

	// Active products can be sold and moved. Deactivation is the only
	// removal path; products are never hard-deleted.
	Active bool `db:"active" json:"active"`
}

// NewProduct creates an active product with zero stock.
func NewProduct(domain Domain, code, name string) *Product {
	return &Product{
		BaseCatalog: entity.NewBaseCatalog(),
		Domain:      domain,
		Code:        code,
		Name:        name,
		Active:      true,
	}
}

// Ref returns the tagged reference to this product.
func (p *Product) Ref() ProductRef {
	return ProductRef{Domain: p.Domain, ID: p.ID}
}

// LowStock reports whether stock has fallen to or below the minimum.
func (p *Product) LowStock() bool {
	return p.Stock <= p.MinStock
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if !p.Domain.Valid() {
		return apperror.NewValidation("unknown product domain").
			WithDetail("field", "domain")
	}
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if p.Code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}
	if p.SalePrice.IsNegative() {
		return apperror.NewValidation("sale price cannot be negative").
			WithDetail("field", "salePrice")
	}
	if p.UnitCost.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}
	if p.MinStock.IsNegative() {
		return apperror.NewValidation("minimum stock cannot be negative").
			WithDetail("field", "minStock")
	}
	if p.Stock.IsNegative() {
		return apperror.NewValidation("stock cannot be negative").
			WithDetail("field", "stock")
	}
	if p.Domain.WholeUnitsOnly() {
		if !p.Stock.IsWholeUnits() {
			return apperror.NewInvalidQuantity("stock must be whole units for piece-counted products").
				WithDetail("field", "stock")
		}
		if !p.MinStock.IsWholeUnits() {
			return apperror.NewInvalidQuantity("minimum stock must be whole units for piece-counted products").
				WithDetail("field", "minStock")
		}
	}
	return nil
}

// CheckQuantity validates a movement quantity against domain rules.
// The sign is checked by the ledger per movement kind; this only
// checks granularity.
func (p *Product) CheckQuantity(qty types.Quantity) error {
	if p.Domain.WholeUnitsOnly() && !qty.IsWholeUnits() {
		return apperror.NewInvalidQuantity("quantity must be whole units for piece-counted products").
			WithDetail("product_id", p.ID.String()).
			WithDetail("quantity", qty.String())
	}
	return nil
}
