package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framasa/internal/core/apperror"
	"framasa/internal/core/id"
	"framasa/internal/core/types"
	"framasa/internal/domain/inventory"
)

func TestDefaultPolicy(t *testing.T) {
	p, err := NewDocumentPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicyExpr, p.Expr())

	inv := NewInvoice(id.New())
	inv.Company = CompanyHardware
	inv.Lines = []InvoiceLine{testLine(inventory.DomainHardware, 2, "100")}
	inv.Discount = types.MustMoney("50")
	inv.RecalculateTotals()

	assert.NoError(t, p.CheckInvoice(inv))

	inv.Discount = types.MustMoney("250")
	inv.RecalculateTotals()
	err = p.CheckInvoice(inv)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodePolicyViolation))
}

func TestCustomPolicyExpression(t *testing.T) {
	// Mixed-company documents may not carry any discount.
	p, err := NewDocumentPolicy(`discount <= subtotal && (company != "MIXED" || discount == 0.0)`)
	require.NoError(t, err)

	inv := NewInvoice(id.New())
	inv.Company = CompanyMixed
	inv.Lines = []InvoiceLine{
		testLine(inventory.DomainHardware, 1, "100"),
		testLine(inventory.DomainBlocks, 1, "100"),
	}
	inv.Discount = types.MustMoney("10")
	inv.RecalculateTotals()
	assert.Error(t, p.CheckInvoice(inv))

	inv.Discount = types.Zero()
	inv.RecalculateTotals()
	assert.NoError(t, p.CheckInvoice(inv))
}

func TestPolicyCompileErrors(t *testing.T) {
	_, err := NewDocumentPolicy("discount +")
	assert.Error(t, err, "syntax error")

	_, err = NewDocumentPolicy("discount + subtotal")
	assert.Error(t, err, "non-bool result")
}

func TestPolicyOnQuotation(t *testing.T) {
	p := MustPolicy("")

	q := NewQuotation(id.New())
	q.Company = CompanyBlocks
	q.Lines = []QuotationLine{{
		LineID:        id.New(),
		ProductDomain: inventory.DomainBlocks,
		ProductID:     id.New(),
		Quantity:      types.NewQuantityFromInt(10),
		UnitPrice:     types.MustMoney("12"),
	}}
	q.Discount = types.MustMoney("500")
	q.RecalculateTotals()

	err := p.CheckQuotation(q)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodePolicyViolation))
}
