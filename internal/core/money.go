package core

import "github.com/shopspring/decimal"

// moneyScale matches the NUMERIC(12,2) money columns.
const moneyScale = 2

// validatePrice rejects negative amounts and amounts finer than a cent. Stored
// totals are only consistent with stored prices when no rounding happens on write.
func validatePrice(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return invalidArgument("%s cannot be negative", field)
	}
	if !d.Equal(d.Round(moneyScale)) {
		return invalidArgument("%s %s has more than %d decimal places", field, d.String(), moneyScale)
	}
	return nil
}
