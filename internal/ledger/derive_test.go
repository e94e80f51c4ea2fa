package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

func TestLineItemRemaining(t *testing.T) {
	tests := []struct {
		name string
		item ledger.LineItem
		want string
	}{
		{name: "Unpaid", item: item("t1", "1000", date(2024, 1, 1)), want: "1000"},
		{name: "PartiallyPaid", item: item("t1", "1000", date(2024, 1, 1), "400"), want: "600"},
		{name: "Overpaid", item: item("t1", "100", date(2024, 1, 1), "150"), want: "0"},
		{name: "MarkedPaidWithoutPayments", item: paid(item("t1", "1000", date(2024, 1, 1))), want: "0"},
		{name: "NegativePaymentIgnored", item: item("t1", "100", date(2024, 1, 1), "-50"), want: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ledger.LineItemRemaining(tt.item)
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name  string
		items []ledger.LineItem
		want  ledger.Status
	}{
		{name: "NoItems", want: ledger.StatusPaid},
		{name: "AllUnpaid", items: []ledger.LineItem{item("a", "10", date(2024, 1, 1))}, want: ledger.StatusUnpaid},
		{
			name:  "UnpaidWithPayments",
			items: []ledger.LineItem{item("a", "10", date(2024, 1, 1), "4")},
			want:  ledger.StatusPartial,
		},
		{
			name: "PaymentsOnlyOnPaidItem",
			items: []ledger.LineItem{
				paid(item("a", "10", date(2024, 1, 1), "10")),
				item("b", "5", date(2024, 1, 2)),
			},
			want: ledger.StatusUnpaid,
		},
		{
			name:  "AllPaid",
			items: []ledger.LineItem{paid(item("a", "10", date(2024, 1, 1), "10"))},
			want:  ledger.StatusPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ledger.Entity{LineItems: tt.items}
			assert.Equal(t, tt.want, ledger.DeriveStatus(e))
		})
	}
}

func TestLastActivity_UsesBusinessDateNotInsertionOrder(t *testing.T) {
	e := ledger.Entity{LineItems: []ledger.LineItem{
		item("a", "10", date(2024, 2, 10)),
		item("b", "10", date(2024, 1, 5)),
	}}

	assert.Equal(t, date(2024, 2, 10), ledger.LastActivity(e, fixedNow))
	assert.Equal(t, fixedNow, ledger.LastActivity(ledger.Entity{}, fixedNow))
}

func TestRecompute_Idempotent(t *testing.T) {
	e := customer("c1", "9000000001",
		item("a", "1000", date(2024, 1, 1), "400"),
		paid(item("b", "250", date(2024, 1, 3))),
	)

	once := ledger.Recompute(e, fixedNow)
	twice := ledger.Recompute(once, fixedNow)

	assert.Equal(t, once, twice)
	assert.True(t, dec("600").Equal(once.OutstandingTotal))
	assert.Equal(t, ledger.StatusPartial, once.Status)
	assert.Equal(t, date(2024, 1, 3), once.LastActivityDate)
}
