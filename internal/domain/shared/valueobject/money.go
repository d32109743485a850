package valueobject

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

// INR is the currency ledgers are kept in unless configured otherwise
const INR Currency = "INR"

// DefaultCurrency is the default currency for the system
const DefaultCurrency = INR

// Money is an amount in a currency, used to render ledger totals
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// Of creates Money in the given currency, falling back to DefaultCurrency
// when currency is empty.
func Of(amount decimal.Decimal, currency Currency) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amount: amount, currency: currency}
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

// Display formats the amount with the currency symbol and grouping of the
// currency, e.g. "₹1,500.00". Unknown currencies fall back to String.
func (m Money) Display() string {
	cur := money.GetCurrency(string(m.currency))
	if cur == nil {
		return m.String()
	}
	minor := m.amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
