package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestRoundCents(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"30.4", "30.4"},
		{"0.005", "0.01"},
		{"-0.005", "-0.01"},
		{"2.344999", "2.34"},
		{"190.395", "190.4"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := RoundCents(decimal.RequireFromString(tt.in))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestPercentAndRatio(t *testing.T) {
	assert.True(t, Percent(decimal.NewFromInt(160), decimal.NewFromInt(19)).Equal(decimal.RequireFromString("30.4")))
	assert.True(t, Ratio(decimal.NewFromInt(40), decimal.NewFromInt(160)).Equal(decimal.NewFromInt(25)))
	assert.True(t, Ratio(decimal.NewFromInt(40), decimal.Zero).IsZero())
}

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), EUR)
		require.NoError(t, err)
		assert.Equal(t, EUR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestMoney_Add(t *testing.T) {
	a := NewMoneyEUR(decimal.RequireFromString("10.10"))
	b := NewMoneyEUR(decimal.RequireFromString("0.25"))

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "10.35 EUR", sum.String())

	_, err = a.Add(Zero(CHF))
	assert.Error(t, err)
}

func TestMoney_Round(t *testing.T) {
	m := NewMoneyEUR(decimal.RequireFromString("12.345")).Round()
	assert.True(t, m.Amount().Equal(decimal.RequireFromString("12.35")))
}

func TestMoney_Format(t *testing.T) {
	m := NewMoneyEUR(decimal.RequireFromString("1234.56"))

	assert.Contains(t, m.Format(language.German), "1.234,56")
	assert.Contains(t, m.Format(language.English), "1,234.56")
}

func TestMoney_JSON(t *testing.T) {
	m := NewMoneyEUR(decimal.RequireFromString("190.4"))

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"190.40","currency":"EUR"}`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"5.5"}`), &back))
	assert.Equal(t, EUR, back.Currency())
	assert.True(t, back.Amount().Equal(decimal.RequireFromString("5.5")))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("42.10"))
	assert.Equal(t, EUR, m.Currency())

	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "42.10", v)
}
