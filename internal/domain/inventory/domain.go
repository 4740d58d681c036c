// Package inventory provides the unified stock ledger over the three
// product lines of the business: hardware retail, block manufacturing
// and aggregate sales.
package inventory

import (
	"fmt"

	"framasa/internal/core/apperror"
	"framasa/internal/core/id"
)

// Domain identifies which product line a product belongs to.
type Domain string

const (
	DomainHardware   Domain = "HARDWARE"
	DomainBlocks     Domain = "BLOCKS"
	DomainAggregates Domain = "AGGREGATES"
)

// Domains lists all product lines in stable order.
func Domains() []Domain {
	return []Domain{DomainHardware, DomainBlocks, DomainAggregates}
}

// ParseDomain validates and normalizes a domain string.
func ParseDomain(s string) (Domain, error) {
	switch Domain(s) {
	case DomainHardware, DomainBlocks, DomainAggregates:
		return Domain(s), nil
	}
	return "", apperror.NewValidation(fmt.Sprintf("unknown product domain: %q", s)).
		WithDetail("field", "domain")
}

// Valid reports whether the domain is one of the known product lines.
func (d Domain) Valid() bool {
	switch d {
	case DomainHardware, DomainBlocks, DomainAggregates:
		return true
	}
	return false
}

// WholeUnitsOnly reports whether products in this domain move in whole
// units. Hardware items and blocks are piece-counted; aggregates are
// sold in fractional cubic meters.
func (d Domain) WholeUnitsOnly() bool {
	return d == DomainHardware || d == DomainBlocks
}

// ProductRef is a tagged reference to a product in one of the domains.
// The same product ID may exist in different domains, so the domain tag
// is part of the identity.
type ProductRef struct {
	Domain Domain `json:"domain"`
	ID     id.ID  `json:"id"`
}

// NewProductRef builds a validated product reference.
func NewProductRef(domain Domain, productID id.ID) (ProductRef, error) {
	if !domain.Valid() {
		return ProductRef{}, apperror.NewValidation(fmt.Sprintf("unknown product domain: %q", domain))
	}
	if id.IsNil(productID) {
		return ProductRef{}, apperror.NewValidation("product id is required")
	}
	return ProductRef{Domain: domain, ID: productID}, nil
}

// String returns a compact representation for logs and error details.
func (r ProductRef) String() string {
	return string(r.Domain) + ":" + r.ID.String()
}
