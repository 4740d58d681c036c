package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framasa/internal/core/id"
	"framasa/internal/core/types"
	"framasa/internal/domain/inventory"
)

func testLine(d inventory.Domain, qty float64, price string) InvoiceLine {
	return InvoiceLine{
		LineID:        id.New(),
		ProductDomain: d,
		ProductID:     id.New(),
		ProductCode:   "P-001",
		ProductName:   "Test product",
		Quantity:      types.NewQuantityFromFloat64(qty),
		UnitPrice:     types.MustMoney(price),
		Discount:      types.Zero(),
	}
}

func TestInvoiceRecalculateTotals(t *testing.T) {
	inv := NewInvoice(id.New())
	inv.Status = StatusPending
	inv.Lines = []InvoiceLine{
		testLine(inventory.DomainHardware, 2, "150.00"),  // 300.00
		testLine(inventory.DomainAggregates, 3.5, "400"), // 1400.00
	}
	inv.Discount = types.MustMoney("100")

	inv.RecalculateTotals()

	assert.True(t, inv.Subtotal.Equal(types.MustMoney("1700")), "subtotal = %s", inv.Subtotal)
	assert.True(t, inv.Total.Equal(types.MustMoney("1600")), "total = %s", inv.Total)
	assert.True(t, inv.Outstanding().Equal(types.MustMoney("1600")))
	assert.Equal(t, StatusPending, inv.Status)
}

func TestInvoiceLineDiscount(t *testing.T) {
	l := testLine(inventory.DomainHardware, 4, "25.50")
	l.Discount = types.MustMoney("2.00")
	l.Recalculate()
	assert.True(t, l.Subtotal.Equal(types.MustMoney("100.00")), "subtotal = %s", l.Subtotal)
}

func TestInvoiceStatusFromPayments(t *testing.T) {
	inv := NewInvoice(id.New())
	inv.Status = StatusPending
	inv.Lines = []InvoiceLine{testLine(inventory.DomainBlocks, 10, "12")}
	inv.RecalculateTotals()
	require.True(t, inv.Total.Equal(types.MustMoney("120")))

	inv.TotalPaid = types.MustMoney("50")
	inv.RecalculateTotals()
	assert.Equal(t, StatusPartial, inv.Status)

	inv.TotalPaid = types.MustMoney("120")
	inv.RecalculateTotals()
	assert.Equal(t, StatusPaid, inv.Status)

	// VOID is sticky regardless of payments.
	inv.Status = StatusVoid
	inv.RecalculateTotals()
	assert.Equal(t, StatusVoid, inv.Status)
}

func TestInvoiceValidate(t *testing.T) {
	ctx := context.Background()

	inv := NewInvoice(id.New())
	inv.Lines = nil
	assert.Error(t, inv.Validate(ctx), "no lines")

	inv.Lines = []InvoiceLine{testLine(inventory.DomainHardware, 1.5, "10")}
	err := inv.Validate(ctx)
	require.Error(t, err, "fractional hardware quantity")

	inv.Lines = []InvoiceLine{testLine(inventory.DomainAggregates, 1.5, "10")}
	assert.NoError(t, inv.Validate(ctx), "fractional aggregates quantity is fine")

	inv.Lines = []InvoiceLine{testLine(inventory.DomainHardware, 0, "10")}
	assert.Error(t, inv.Validate(ctx), "zero quantity")
}

func TestResolveCompany(t *testing.T) {
	cases := []struct {
		name    string
		domains []inventory.Domain
		want    Company
	}{
		{"hardware only", []inventory.Domain{inventory.DomainHardware, inventory.DomainHardware}, CompanyHardware},
		{"blocks only", []inventory.Domain{inventory.DomainBlocks}, CompanyBlocks},
		{"aggregates only", []inventory.Domain{inventory.DomainAggregates}, CompanyAggregates},
		{"mixed", []inventory.Domain{inventory.DomainHardware, inventory.DomainAggregates}, CompanyMixed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveCompany(tc.domains)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := ResolveCompany(nil)
	assert.Error(t, err, "empty lines")
}

func TestCompanyPrefix(t *testing.T) {
	assert.Equal(t, "HW", CompanyHardware.Prefix())
	assert.Equal(t, "BLK", CompanyBlocks.Prefix())
	assert.Equal(t, "AGG", CompanyAggregates.Prefix())
	assert.Equal(t, "MIX", CompanyMixed.Prefix())
}
