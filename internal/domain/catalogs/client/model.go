// Package client provides the Client catalog: the customers shared by
// all three business lines, including their on-account credit state.
package client

import (
	"context"
	"regexp"

	"framasa/internal/core/apperror"
	"framasa/internal/core/entity"
	"framasa/internal/core/types"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Client represents a customer across all business lines.
type Client struct {
	entity.Catalog

	// TaxID is the fiscal identifier (RTN), unique when set
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	Address       *string `db:"address" json:"address,omitempty"`
	Phone         *string `db:"phone" json:"phone,omitempty"`
	Email         *string `db:"email" json:"email,omitempty"`
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// CreditEnabled allows the client to pay on account
	CreditEnabled bool `db:"credit_enabled" json:"creditEnabled"`

	// CreditLimit is the maximum on-account debt allowed
	CreditLimit types.Money `db:"credit_limit" json:"creditLimit"`

	// Balance is the current on-account debt. Mutated only by the
	// billing service inside payment transactions.
	Balance types.Money `db:"balance" json:"balance"`
}

// NewClient creates a new Client with required fields.
func NewClient(code, name string) *Client {
	return &Client{
		Catalog: entity.NewCatalog(code, name),
	}
}

// AvailableCredit returns how much on-account debt the client can
// still take on. Never negative.
func (c *Client) AvailableCredit() types.Money {
	avail := c.CreditLimit.Sub(c.Balance)
	if avail.IsNegative() {
		return types.Zero()
	}
	return avail
}

// CheckCredit verifies that the given amount can be charged on
// account. Returns CREDIT_DENIED with the reason otherwise.
func (c *Client) CheckCredit(amount types.Money) error {
	if !c.CreditEnabled {
		return apperror.NewCreditDenied(c.ID.String(), "client does not have credit enabled")
	}
	if amount.GreaterThan(c.AvailableCredit()) {
		return apperror.NewCreditDenied(c.ID.String(), "amount exceeds available credit").
			WithDetail("amount", amount.String()).
			WithDetail("available", c.AvailableCredit().String())
	}
	return nil
}

// Validate implements entity.Validatable interface.
func (c *Client) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	if c.CreditLimit.IsNegative() {
		return apperror.NewValidation("credit limit cannot be negative").
			WithDetail("field", "creditLimit")
	}

	if c.Balance.IsNegative() {
		return apperror.NewValidation("balance cannot be negative").
			WithDetail("field", "balance")
	}

	if !c.CreditEnabled && c.CreditLimit.IsPositive() {
		return apperror.NewValidation("credit limit requires credit to be enabled").
			WithDetail("field", "creditLimit")
	}

	return nil
}
