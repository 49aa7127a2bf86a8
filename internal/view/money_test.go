package view

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	require.Equal(t, "$ 12,500.00", Money("$", 12500))
	require.Equal(t, "Rp 1,000,000.50", Money("Rp", 1000000.5))
	require.Equal(t, "0.00", Money("", 0))
	require.Equal(t, "$ -42.10", Money("$", -42.1))
}
