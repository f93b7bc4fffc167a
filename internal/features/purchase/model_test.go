package purchase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edumart/edumart-server-go/pkg/types"
)

func TestCheckoutAmount(t *testing.T) {
	price, err := types.NewMoneyFromString("99.99")
	require.NoError(t, err)

	require.Equal(t, "79.99", CheckoutAmount(price, 20).StringFixed())
	require.Equal(t, "99.99", CheckoutAmount(price, 0).StringFixed())
	require.Equal(t, "0.00", CheckoutAmount(price, 100).StringFixed())
}

func TestCanSettle(t *testing.T) {
	require.True(t, CanSettle(types.PurchaseStatusPending))
	require.False(t, CanSettle(types.PurchaseStatusCompleted))
	require.False(t, CanSettle(types.PurchaseStatusFailed))
}
