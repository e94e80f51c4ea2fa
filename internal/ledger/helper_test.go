package ledger_test

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newEngine returns an engine with a fixed clock and ids id-1, id-2, ...
func newEngine() *ledger.Engine {
	n := 0

	return ledger.NewEngine(
		ledger.WithClock(func() time.Time { return fixedNow }),
		ledger.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
}

func item(id, amount string, on time.Time, payments ...string) ledger.LineItem {
	li := ledger.LineItem{
		ID:       id,
		Amount:   dec(amount),
		Date:     on,
		Status:   ledger.ItemUnpaid,
		Payments: []ledger.Payment{},
	}

	for i, p := range payments {
		li.Payments = append(li.Payments, ledger.Payment{
			ID:     fmt.Sprintf("%s-p%d", id, i),
			Amount: dec(p),
			Date:   on,
			Method: ledger.MethodCash,
		})
	}

	return li
}

func paid(li ledger.LineItem) ledger.LineItem {
	li.Status = ledger.ItemPaid
	at := li.Date
	li.PaidDate = &at

	return li
}

func customer(id, mobile string, items ...ledger.LineItem) ledger.Entity {
	return ledger.Recompute(ledger.Entity{
		ID:        id,
		Name:      "Customer " + id,
		Mobile:    mobile,
		LineItems: items,
	}, fixedNow)
}

func receivables(entities ...ledger.Entity) ledger.Collection {
	return ledger.Collection{Kind: ledger.KindReceivable, Entities: entities}
}
