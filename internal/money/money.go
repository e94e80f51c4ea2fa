// Package money holds the exact decimal arithmetic used for ledger balances.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used for display when no currency is configured.
const DefaultCurrency = money.INR

// NonNegative floors d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}

	return d
}

// Sum adds amounts exactly. Negative amounts count as zero, so data imported
// from elsewhere can never reduce a total below what was recorded.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(NonNegative(a))
	}

	return total
}

// Remaining returns total minus the sum of payments, clamped at zero.
func Remaining(total decimal.Decimal, payments ...decimal.Decimal) decimal.Decimal {
	return NonNegative(NonNegative(total).Sub(Sum(payments...)))
}

// Format renders d in the given ISO currency, e.g. "₹1,000.00".
// Unknown currency codes fall back to two fraction digits and the code as suffix.
func Format(d decimal.Decimal, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}

	cur := money.GetCurrency(currency)
	if cur == nil {
		return d.StringFixed(2) + " " + currency
	}

	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()

	return money.New(minor, cur.Code).Display()
}
