package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("99.99")
	require.NoError(t, err)
	require.Equal(t, "99.99", m.StringFixed())

	_, err = NewMoneyFromString("not-a-number")
	require.Error(t, err)
}

func TestMoneyApplyDiscountPercent(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		discount int
		want     string
	}{
		{"twenty percent off", "99.99", 20, "79.99"},
		{"no discount", "50.00", 0, "50.00"},
		{"full discount", "50.00", 100, "0.00"},
		{"half off odd cents", "19.99", 50, "10.00"},
		{"rounds to cents", "10.00", 33, "6.70"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := NewMoneyFromString(tt.price)
			require.NoError(t, err)

			got := price.ApplyDiscountPercent(tt.discount)
			require.Equal(t, tt.want, got.StringFixed())
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := NewMoney(10.50)
	b := NewMoney(2.25)

	require.Equal(t, "12.75", a.Add(b).StringFixed())
	require.Equal(t, "8.25", a.Sub(b).StringFixed())
	require.True(t, a.GreaterThan(b))
	require.True(t, b.LessThan(a))
	require.False(t, a.IsZero())
	require.False(t, a.IsNegative())
	require.True(t, b.Sub(a).IsNegative())
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := NewMoney(42.5)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, m.StringFixed(), decoded.StringFixed())
}

func TestPurchaseStatusIsTerminal(t *testing.T) {
	require.False(t, PurchaseStatusPending.IsTerminal())
	require.True(t, PurchaseStatusCompleted.IsTerminal())
	require.True(t, PurchaseStatusFailed.IsTerminal())
}
