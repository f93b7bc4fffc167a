package enrollment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidRating(t *testing.T) {
	for _, value := range []int{1, 2, 3, 4, 5} {
		require.True(t, ValidRating(value), "value %d", value)
	}
	for _, value := range []int{0, -1, 6, 100} {
		require.False(t, ValidRating(value), "value %d", value)
	}
}

func TestAverage(t *testing.T) {
	require.Equal(t, float64(0), Average(nil))
	require.Equal(t, float64(3), Average([]int{3}))
	require.Equal(t, 3.5, Average([]int{3, 4}))
	require.Equal(t, float64(1), Average([]int{1, 1, 1}))
}
