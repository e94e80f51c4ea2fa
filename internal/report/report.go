// Package report summarises both ledgers for the dashboard and weekly report.
package report

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/khata/internal/ledger"
	"github.com/MrJamesThe3rd/khata/internal/money"
)

// StaleAfter is how long an unpaid customer can go without activity before
// the balance counts as overdue.
const StaleAfter = 30 * 24 * time.Hour

const recentLimit = 8

type Summary struct {
	Customers          int
	Creditors          int
	UnpaidCustomers    int
	UnpaidCreditors    int
	TotalReceivables   decimal.Decimal
	TotalPayables      decimal.Decimal
	NetPosition        decimal.Decimal // positive when more is owed to us than by us
	OverdueReceivables []ledger.Entity
	OverduePayables    []ledger.Entity
	Recent             []Activity
}

// Activity is a line item shown in the recent activity feed.
type Activity struct {
	Kind       ledger.Kind
	EntityID   string
	EntityName string
	Item       ledger.LineItem
}

// Summarise derives the dashboard figures from both collections as of now.
func Summarise(customers, creditors ledger.Collection, now time.Time) Summary {
	s := Summary{
		Customers: len(customers.Entities),
		Creditors: len(creditors.Entities),
	}

	due := make([]decimal.Decimal, 0, len(customers.Entities))

	for _, e := range customers.Entities {
		due = append(due, e.OutstandingTotal)

		if e.Status == ledger.StatusUnpaid {
			s.UnpaidCustomers++

			if now.Sub(e.LastActivityDate) > StaleAfter {
				s.OverdueReceivables = append(s.OverdueReceivables, e)
			}
		}
	}

	owed := make([]decimal.Decimal, 0, len(creditors.Entities))

	for _, e := range creditors.Entities {
		owed = append(owed, e.OutstandingTotal)

		if e.Status == ledger.StatusUnpaid {
			s.UnpaidCreditors++
		}

		if HasOverdueItem(e, now) {
			s.OverduePayables = append(s.OverduePayables, e)
		}
	}

	s.TotalReceivables = money.Sum(due...)
	s.TotalPayables = money.Sum(owed...)
	s.NetPosition = s.TotalReceivables.Sub(s.TotalPayables)
	s.Recent = recent(customers, creditors)

	return s
}

// HasOverdueItem reports whether e holds an unpaid line item whose due date
// has passed.
func HasOverdueItem(e ledger.Entity, now time.Time) bool {
	for _, li := range e.LineItems {
		if li.Status == ledger.ItemPaid || li.DueDate == nil {
			continue
		}

		if li.DueDate.Before(now) {
			return true
		}
	}

	return false
}

func recent(collections ...ledger.Collection) []Activity {
	var all []Activity

	for _, c := range collections {
		for _, e := range c.Entities {
			for _, li := range e.LineItems {
				all = append(all, Activity{Kind: c.Kind, EntityID: e.ID, EntityName: e.Name, Item: li})
			}
		}
	}

	slices.SortStableFunc(all, func(a, b Activity) int {
		return b.Item.Date.Compare(a.Item.Date)
	})

	if len(all) > recentLimit {
		all = all[:recentLimit]
	}

	return all
}
