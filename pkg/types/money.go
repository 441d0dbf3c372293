package types

import "github.com/shopspring/decimal"

// MoneyScale is the number of decimal places stored for amounts (numeric(18,2)).
const MoneyScale = 2

// IsMoney reports whether d is a non-negative amount the database can store
// without rounding.
func IsMoney(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Truncate(MoneyScale))
}
