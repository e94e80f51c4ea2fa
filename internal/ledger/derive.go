package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/khata/internal/money"
)

// Paid returns the sum of the item's payments.
func (li LineItem) Paid() decimal.Decimal {
	amounts := make([]decimal.Decimal, len(li.Payments))
	for i, p := range li.Payments {
		amounts[i] = p.Amount
	}

	return money.Sum(amounts...)
}

// LineItemRemaining is what is still owed on a single line item. An item
// marked paid owes nothing regardless of its recorded payments.
func LineItemRemaining(li LineItem) decimal.Decimal {
	if li.Status == ItemPaid {
		return decimal.Zero
	}

	return money.Remaining(li.Amount, li.Paid())
}

// Outstanding sums the remaining balance over all line items of e.
func Outstanding(e Entity) decimal.Decimal {
	remaining := make([]decimal.Decimal, len(e.LineItems))
	for i, li := range e.LineItems {
		remaining[i] = LineItemRemaining(li)
	}

	return money.Sum(remaining...)
}

// DeriveStatus is paid when nothing is outstanding, partial when something is
// outstanding and an unpaid item has received payments, unpaid otherwise.
func DeriveStatus(e Entity) Status {
	if Outstanding(e).IsZero() {
		return StatusPaid
	}

	for _, li := range e.LineItems {
		if li.Status != ItemPaid && len(li.Payments) > 0 {
			return StatusPartial
		}
	}

	return StatusUnpaid
}

// LastActivity is the latest business date among e's line items, or now when
// there are none.
func LastActivity(e Entity, now time.Time) time.Time {
	if len(e.LineItems) == 0 {
		return now
	}

	latest := e.LineItems[0].Date
	for _, li := range e.LineItems[1:] {
		if li.Date.After(latest) {
			latest = li.Date
		}
	}

	return latest
}

// Recompute returns e with OutstandingTotal, Status and LastActivityDate
// derived from its line items. Every mutation ends with it.
func Recompute(e Entity, now time.Time) Entity {
	e.OutstandingTotal = Outstanding(e)
	e.Status = DeriveStatus(e)
	e.LastActivityDate = LastActivity(e, now)

	return e
}
