package entity

import "github.com/shopspring/decimal"

// taxRate is the flat sales tax applied to the item subtotal (not shipping).
var taxRate = decimal.NewFromFloat(0.07)

// Tax returns the sales tax on a subtotal, rounded to whole cents before it
// is ever summed into a total. 99.98 * 0.07 = 6.9986 rounds to 7.00.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRate).Round(2)
}

// OrderTotal computes subtotal + shipping + rounded tax. The result is what
// gets persisted on the order; it is never re-derived from the items later.
func OrderTotal(subtotal, shipping decimal.Decimal) decimal.Decimal {
	return subtotal.Add(shipping).Add(Tax(subtotal)).Round(2)
}

// MinorUnits converts a decimal currency amount to integer cents by rounding.
// Truncation would systematically underprice: 19.999 must become 2000, not 1999.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinorUnits converts integer cents back to a decimal amount.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}
