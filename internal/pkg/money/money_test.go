package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "600.00", Format(60000))
	assert.Equal(t, "125.00", Format(12500))
	assert.Equal(t, "0.05", Format(5))
	assert.Equal(t, "USD 25.00", FormatWithCurrency(2500, "USD"))
}

func TestParse(t *testing.T) {
	cents, err := Parse("499.99")
	require.NoError(t, err)
	assert.Equal(t, int64(49999), cents)

	cents, err = Parse("0.005")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cents)

	_, err = Parse("ten dollars")
	assert.Error(t, err)
}
