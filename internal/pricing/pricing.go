package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/tillpoint/pos-backend/pkg/enums"
)

// Size multipliers for sized categories. An absent size prices as small.
var multipliers = map[enums.VariantSize]decimal.Decimal{
	enums.VariantSizeSmall:  decimal.NewFromInt(1),
	enums.VariantSizeMedium: decimal.RequireFromString("1.3"),
	enums.VariantSizeLarge:  decimal.RequireFromString("1.6"),
}

// Line carries everything needed to price one cart line. It is deliberately a
// value type: the calculator must stay free of side effects so it can run on
// every render.
type Line struct {
	BasePrice   decimal.Decimal
	Sized       bool
	VariantSize *enums.VariantSize
	ManualPrice *decimal.Decimal
	Quantity    int
}

// UnitPrice computes the effective price for a single unit of the line. A
// positive manual override always wins; otherwise sized categories scale the
// base price by the variant multiplier.
func UnitPrice(line Line) decimal.Decimal {
	if line.ManualPrice != nil && line.ManualPrice.IsPositive() {
		return *line.ManualPrice
	}
	if line.Sized && line.VariantSize != nil {
		if mult, ok := multipliers[*line.VariantSize]; ok {
			return line.BasePrice.Mul(mult)
		}
	}
	return line.BasePrice
}

// LineTotal computes unit price times quantity.
func LineTotal(line Line) decimal.Decimal {
	return UnitPrice(line).Mul(decimal.NewFromInt(int64(line.Quantity)))
}

// CartTotal sums the line totals of the whole cart.
func CartTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(LineTotal(line))
	}
	return total
}

// Multiplier exposes the scaling factor for a variant size; unknown sizes
// price as 1.0.
func Multiplier(size enums.VariantSize) decimal.Decimal {
	if mult, ok := multipliers[size]; ok {
		return mult
	}
	return decimal.NewFromInt(1)
}
