package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sergioimports/backend/internal/domain"
)

func d(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

func TestComputeAppliesDiscount(t *testing.T) {
	lines := []domain.CartItem{{ProductID: 1, Price: d("100.00"), Quantity: 2}}

	totals, err := Compute(lines, d("10"))
	require.NoError(t, err)

	assert.True(t, d("200").Equal(totals.Subtotal))
	assert.True(t, d("20").Equal(totals.Discount))
	assert.True(t, d("180").Equal(totals.Total))
}

func TestComputeEmptyCartIsZero(t *testing.T) {
	totals, err := Compute(nil, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestComputeRejectsOutOfRangeDiscount(t *testing.T) {
	lines := []domain.CartItem{{ProductID: 1, Price: d("10"), Quantity: 1}}

	_, err := Compute(lines, d("-1"))
	assert.ErrorIs(t, err, ErrInvalidDiscount)

	_, err = Compute(lines, d("100.01"))
	assert.ErrorIs(t, err, ErrInvalidDiscount)

	totals, err := Compute(lines, d("100"))
	require.NoError(t, err)
	assert.True(t, totals.Total.IsZero())
}

func TestComputeDoesNotRoundMidCalculation(t *testing.T) {
	lines := []domain.CartItem{
		{ProductID: 1, Price: d("0.333"), Quantity: 3},
		{ProductID: 2, Price: d("10.01"), Quantity: 1},
	}

	totals, err := Compute(lines, d("15"))
	require.NoError(t, err)

	assert.True(t, d("11.009").Equal(totals.Subtotal))
	assert.True(t, d("1.65135").Equal(totals.Discount))
	assert.True(t, d("9.35765").Equal(totals.Total))
}

func TestRoundedKeepsTotalInvariant(t *testing.T) {
	lines := []domain.CartItem{{ProductID: 1, Price: d("10.01"), Quantity: 1}}

	totals, err := Compute(lines, d("15"))
	require.NoError(t, err)
	rounded := totals.Rounded()

	assert.Equal(t, "10.01", rounded.Subtotal.StringFixed(2))
	assert.Equal(t, "1.50", rounded.Discount.StringFixed(2))
	assert.Equal(t, "8.51", rounded.Total.StringFixed(2))
	assert.True(t, rounded.Subtotal.Sub(rounded.Discount).Equal(rounded.Total))
	assert.True(t, d("15").Equal(rounded.DiscountPercent))
}
