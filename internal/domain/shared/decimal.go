package shared

import "github.com/shopspring/decimal"

// DecimalScale is the number of fractional digits stored for quantities,
// prices and amounts (DECIMAL(18,4) columns)
const DecimalScale = 4

// FitsScale reports whether d can be stored without rounding
func FitsScale(d decimal.Decimal) bool {
	return d.Truncate(DecimalScale).Equal(d)
}
