package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/pos-backend/pkg/enums"
)

func sizePtr(size enums.VariantSize) *enums.VariantSize {
	return &size
}

func decPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func TestUnitPriceBaseIdentity(t *testing.T) {
	line := Line{BasePrice: decimal.RequireFromString("120"), Quantity: 1}
	require.True(t, UnitPrice(line).Equal(decimal.RequireFromString("120")))

	// Size set on an unsized category changes nothing.
	line.VariantSize = sizePtr(enums.VariantSizeLarge)
	require.True(t, UnitPrice(line).Equal(decimal.RequireFromString("120")))
}

func TestUnitPriceVariantMultipliers(t *testing.T) {
	tests := []struct {
		size enums.VariantSize
		want string
	}{
		{enums.VariantSizeSmall, "100"},
		{enums.VariantSizeMedium, "130"},
		{enums.VariantSizeLarge, "160"},
	}

	for _, tt := range tests {
		t.Run(string(tt.size), func(t *testing.T) {
			line := Line{
				BasePrice:   decimal.RequireFromString("100"),
				Sized:       true,
				VariantSize: sizePtr(tt.size),
				Quantity:    1,
			}
			require.True(t, UnitPrice(line).Equal(decimal.RequireFromString(tt.want)),
				"size %s priced %s", tt.size, UnitPrice(line))
		})
	}
}

func TestUnitPriceUnsetSizeDefaultsToBase(t *testing.T) {
	line := Line{BasePrice: decimal.RequireFromString("90"), Sized: true, Quantity: 2}
	require.True(t, UnitPrice(line).Equal(decimal.RequireFromString("90")))
}

func TestManualOverrideAlwaysWins(t *testing.T) {
	line := Line{
		BasePrice:   decimal.RequireFromString("100"),
		Sized:       true,
		VariantSize: sizePtr(enums.VariantSizeLarge),
		ManualPrice: decPtr("42"),
		Quantity:    1,
	}
	require.True(t, UnitPrice(line).Equal(decimal.RequireFromString("42")))
}

func TestZeroOverrideIsIgnored(t *testing.T) {
	line := Line{
		BasePrice:   decimal.RequireFromString("100"),
		ManualPrice: decPtr("0"),
		Quantity:    1,
	}
	require.True(t, UnitPrice(line).Equal(decimal.RequireFromString("100")))
}

func TestCartTotalMixedLines(t *testing.T) {
	// 2 x 50 plus 1 x 100 overridden to 80 = 180.
	lines := []Line{
		{BasePrice: decimal.RequireFromString("50"), Quantity: 2},
		{BasePrice: decimal.RequireFromString("100"), ManualPrice: decPtr("80"), Quantity: 1},
	}
	require.True(t, CartTotal(lines).Equal(decimal.RequireFromString("180")),
		"got %s", CartTotal(lines))
}

func TestCartTotalEmpty(t *testing.T) {
	require.True(t, CartTotal(nil).Equal(decimal.Zero))
}

func TestCalculatorIsPure(t *testing.T) {
	line := Line{
		BasePrice:   decimal.RequireFromString("75.50"),
		Sized:       true,
		VariantSize: sizePtr(enums.VariantSizeMedium),
		Quantity:    3,
	}
	first := LineTotal(line)
	second := LineTotal(line)
	require.True(t, first.Equal(second))
	require.True(t, line.BasePrice.Equal(decimal.RequireFromString("75.50")))
}
