package user

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidRole(t *testing.T) {
	require.True(t, ValidRole("student"))
	require.True(t, ValidRole("educator"))
	require.False(t, ValidRole("admin"))
	require.False(t, ValidRole(""))
}
