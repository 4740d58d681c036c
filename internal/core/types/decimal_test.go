package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityParsing(t *testing.T) {
	cases := []struct {
		in   string
		want Quantity
	}{
		{`12`, NewQuantityFromInt(12)},
		{`12.5`, NewQuantityFromInt64Scaled(125000)},
		{`"12.5"`, NewQuantityFromInt64Scaled(125000)},
		{`-3.25`, NewQuantityFromInt64Scaled(-32500)},
		{`0.0001`, NewQuantityFromInt64Scaled(1)},
		// Digits past the 4th are truncated, not rounded.
		{`1.99999`, NewQuantityFromInt64Scaled(19999)},
		{`null`, 0},
	}

	for _, tc := range cases {
		var q Quantity
		require.NoError(t, json.Unmarshal([]byte(tc.in), &q), "input %s", tc.in)
		assert.Equal(t, tc.want, q, "input %s", tc.in)
	}

	var q Quantity
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &q))
}

func TestQuantityJSONRoundTrip(t *testing.T) {
	q := NewQuantityFromInt64Scaled(1234567) // 123.4567

	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Equal(t, "123.4567", string(data))

	var back Quantity
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, q, back)
}

func TestQuantityWholeUnits(t *testing.T) {
	assert.True(t, NewQuantityFromInt(5).IsWholeUnits())
	assert.True(t, Quantity(0).IsWholeUnits())
	assert.False(t, NewQuantityFromFloat64(5.5).IsWholeUnits())
	assert.True(t, NewQuantityFromInt(-3).IsWholeUnits())
}

func TestQuantityToMoney(t *testing.T) {
	q := NewQuantityFromFloat64(2.5)
	price := NewMoney(10)

	total := price.Mul(q.ToMoney())
	assert.True(t, NewMoney(25).Equal(total))
}

func TestQuantityString(t *testing.T) {
	assert.Equal(t, "0.0000", Quantity(0).String())
	assert.Equal(t, "-1.2500", NewQuantityFromFloat64(-1.25).String())
	assert.Equal(t, "100.0000", NewQuantityFromInt(100).String())
}
