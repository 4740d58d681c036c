package dto

import (
	"framasa/internal/core/types"
	"framasa/internal/domain/catalogs/client"
)

// CreateClientRequest for creating clients. Code is generated from the
// CLI sequence when empty.
type CreateClientRequest struct {
	Code          string  `json:"code"`
	Name          string  `json:"name" binding:"required"`
	TaxID         *string `json:"taxId"`
	Address       *string `json:"address"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	ContactPerson *string `json:"contactPerson"`

	CreditEnabled bool        `json:"creditEnabled"`
	CreditLimit   types.Money `json:"creditLimit"`
}

// ToClient converts to domain entity.
func (r *CreateClientRequest) ToClient() *client.Client {
	c := client.NewClient(r.Code, r.Name)
	c.TaxID = r.TaxID
	c.Address = r.Address
	c.Phone = r.Phone
	c.Email = r.Email
	c.ContactPerson = r.ContactPerson
	c.CreditEnabled = r.CreditEnabled
	c.CreditLimit = r.CreditLimit
	return c
}

// UpdateClientRequest for updating clients. Balance is absent on
// purpose: only billing payments move it.
type UpdateClientRequest struct {
	Code          *string `json:"code"`
	Name          *string `json:"name"`
	TaxID         *string `json:"taxId"`
	Address       *string `json:"address"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	ContactPerson *string `json:"contactPerson"`

	CreditEnabled *bool        `json:"creditEnabled"`
	CreditLimit   *types.Money `json:"creditLimit"`

	Version int `json:"version" binding:"required,min=1"`
}

// ApplyTo merges changed fields onto the existing entity.
func (r *UpdateClientRequest) ApplyTo(c *client.Client) *client.Client {
	if r.Code != nil {
		c.Code = *r.Code
	}
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.TaxID != nil {
		c.TaxID = r.TaxID
	}
	if r.Address != nil {
		c.Address = r.Address
	}
	if r.Phone != nil {
		c.Phone = r.Phone
	}
	if r.Email != nil {
		c.Email = r.Email
	}
	if r.ContactPerson != nil {
		c.ContactPerson = r.ContactPerson
	}
	if r.CreditEnabled != nil {
		c.CreditEnabled = *r.CreditEnabled
	}
	if r.CreditLimit != nil {
		c.CreditLimit = *r.CreditLimit
	}
	c.Version = r.Version
	return c
}

// SetCreditLimitRequest changes a client's credit terms.
type SetCreditLimitRequest struct {
	Enabled bool        `json:"enabled"`
	Limit   types.Money `json:"limit"`
}

// ClientResponse represents a client in API responses.
type ClientResponse struct {
	CatalogResponse
	TaxID         *string `json:"taxId,omitempty"`
	Address       *string `json:"address,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
	ContactPerson *string `json:"contactPerson,omitempty"`

	CreditEnabled   bool        `json:"creditEnabled"`
	CreditLimit     types.Money `json:"creditLimit"`
	Balance         types.Money `json:"balance"`
	AvailableCredit types.Money `json:"availableCredit"`
}

// FromClient creates response from domain entity.
func FromClient(c *client.Client) *ClientResponse {
	return &ClientResponse{
		CatalogResponse: FromCatalog(c.Catalog),
		TaxID:           c.TaxID,
		Address:         c.Address,
		Phone:           c.Phone,
		Email:           c.Email,
		ContactPerson:   c.ContactPerson,
		CreditEnabled:   c.CreditEnabled,
		CreditLimit:     c.CreditLimit,
		Balance:         c.Balance,
		AvailableCredit: c.AvailableCredit(),
	}
}
