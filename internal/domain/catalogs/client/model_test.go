package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framasa/internal/core/apperror"
	"framasa/internal/core/types"
)

func TestAvailableCredit(t *testing.T) {
	c := NewClient("CLI-001", "Constructora del Valle")
	c.CreditEnabled = true
	c.CreditLimit = types.NewMoney(10000)
	c.Balance = types.NewMoney(3500)

	assert.True(t, types.NewMoney(6500).Equal(c.AvailableCredit()))

	// Balance above limit clamps to zero instead of going negative.
	c.Balance = types.NewMoney(12000)
	assert.True(t, c.AvailableCredit().IsZero())
}

func TestCheckCredit(t *testing.T) {
	c := NewClient("CLI-001", "Constructora del Valle")

	err := c.CheckCredit(types.NewMoney(100))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeCreditDenied))

	c.CreditEnabled = true
	c.CreditLimit = types.NewMoney(1000)

	require.NoError(t, c.CheckCredit(types.NewMoney(1000)))

	err = c.CheckCredit(types.NewMoney(1001))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeCreditDenied))
}

func TestClientValidate(t *testing.T) {
	ctx := context.Background()

	c := NewClient("CLI-001", "Constructora del Valle")
	require.NoError(t, c.Validate(ctx))

	bad := "not-an-email"
	c.Email = &bad
	assert.Error(t, c.Validate(ctx))

	good := "ventas@delvalle.hn"
	c.Email = &good
	require.NoError(t, c.Validate(ctx))

	// Credit limit without credit enabled is inconsistent.
	c.CreditLimit = types.NewMoney(5000)
	assert.Error(t, c.Validate(ctx))

	c.CreditEnabled = true
	require.NoError(t, c.Validate(ctx))
}
