package report_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/khata/internal/ledger"
	"github.com/MrJamesThe3rd/khata/internal/report"
)

var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func day(m, d int) time.Time {
	return time.Date(2024, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func entity(id string, items ...ledger.LineItem) ledger.Entity {
	return ledger.Recompute(ledger.Entity{ID: id, Name: "Entity " + id, Mobile: id, LineItems: items}, now)
}

func item(id string, amount int64, on time.Time) ledger.LineItem {
	return ledger.LineItem{ID: id, Amount: decimal.NewFromInt(amount), Date: on, Status: ledger.ItemUnpaid}
}

func TestSummarise(t *testing.T) {
	pastDue := day(2, 20)
	futureDue := day(3, 20)

	overdueBill := item("b1", 300, day(2, 1))
	overdueBill.DueDate = &pastDue

	laterBill := item("b2", 200, day(2, 25))
	laterBill.DueDate = &futureDue

	settled := item("b3", 50, day(1, 5))
	settled.DueDate = &pastDue
	settled.Status = ledger.ItemPaid

	customers := ledger.Collection{Kind: ledger.KindReceivable, Entities: []ledger.Entity{
		entity("c1", item("t1", 1000, day(1, 10))), // stale: 51 days
		entity("c2", item("t2", 400, day(2, 20))),  // recent
	}}
	creditors := ledger.Collection{Kind: ledger.KindPayable, Entities: []ledger.Entity{
		entity("s1", overdueBill),
		entity("s2", laterBill, settled),
	}}

	s := report.Summarise(customers, creditors, now)

	assert.Equal(t, 2, s.Customers)
	assert.Equal(t, 2, s.Creditors)
	assert.Equal(t, 2, s.UnpaidCustomers)
	assert.Equal(t, 2, s.UnpaidCreditors)
	assert.True(t, s.TotalReceivables.Equal(decimal.NewFromInt(1400)))
	assert.True(t, s.TotalPayables.Equal(decimal.NewFromInt(500)))
	assert.True(t, s.NetPosition.Equal(decimal.NewFromInt(900)))

	require.Len(t, s.OverdueReceivables, 1)
	assert.Equal(t, "c1", s.OverdueReceivables[0].ID)

	require.Len(t, s.OverduePayables, 1)
	assert.Equal(t, "s1", s.OverduePayables[0].ID)

	require.Len(t, s.Recent, 5)
	assert.Equal(t, "b2", s.Recent[0].Item.ID)
	assert.Equal(t, ledger.KindPayable, s.Recent[0].Kind)
	assert.Equal(t, "b3", s.Recent[4].Item.ID)
}

func TestSummarise_RecentIsCapped(t *testing.T) {
	var items []ledger.LineItem
	for i := 0; i < 12; i++ {
		items = append(items, item(string(rune('a'+i)), 10, day(1, i+1)))
	}

	s := report.Summarise(ledger.Collection{Kind: ledger.KindReceivable, Entities: []ledger.Entity{entity("c1", items...)}},
		ledger.Collection{Kind: ledger.KindPayable}, now)

	require.Len(t, s.Recent, 8)
	assert.Equal(t, "l", s.Recent[0].Item.ID)
}

func TestSummarise_Empty(t *testing.T) {
	s := report.Summarise(ledger.Collection{}, ledger.Collection{}, now)

	assert.True(t, s.NetPosition.IsZero())
	assert.Empty(t, s.Recent)
	assert.Empty(t, s.OverdueReceivables)
}
