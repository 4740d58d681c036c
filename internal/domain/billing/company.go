// Package billing provides invoices, payments and quotations across
// the three business lines, with per-company document numbering.
package billing

import (
	"fmt"

	"framasa/internal/core/apperror"
	"framasa/internal/domain/inventory"
)

// Company identifies which business entity issues a document. It is
// derived from the product domains on the document lines, never chosen
// by the caller.
type Company string

const (
	CompanyHardware   Company = "HARDWARE"
	CompanyBlocks     Company = "BLOCKS"
	CompanyAggregates Company = "AGGREGATES"
	// CompanyMixed issues documents whose lines span more than one line
	// of business.
	CompanyMixed Company = "MIXED"
)

// Valid reports whether the company is known.
func (c Company) Valid() bool {
	switch c {
	case CompanyHardware, CompanyBlocks, CompanyAggregates, CompanyMixed:
		return true
	}
	return false
}

// Prefix returns the document numbering prefix for the company.
func (c Company) Prefix() string {
	switch c {
	case CompanyHardware:
		return "HW"
	case CompanyBlocks:
		return "BLK"
	case CompanyAggregates:
		return "AGG"
	default:
		return "MIX"
	}
}

func companyForDomain(d inventory.Domain) Company {
	switch d {
	case inventory.DomainHardware:
		return CompanyHardware
	case inventory.DomainBlocks:
		return CompanyBlocks
	default:
		return CompanyAggregates
	}
}

// ResolveCompany derives the issuing company from the product domains
// on a document. A single domain maps to its company; any mix maps to
// CompanyMixed.
func ResolveCompany(domains []inventory.Domain) (Company, error) {
	if len(domains) == 0 {
		return "", apperror.NewValidation("document has no lines")
	}
	first := domains[0]
	for _, d := range domains {
		if !d.Valid() {
			return "", apperror.NewValidation(fmt.Sprintf("unknown product domain: %q", d))
		}
		if d != first {
			return CompanyMixed, nil
		}
	}
	return companyForDomain(first), nil
}
