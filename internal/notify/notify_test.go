package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/khata/internal/ledger"
	"github.com/MrJamesThe3rd/khata/internal/ledger/store"
	"github.com/MrJamesThe3rd/khata/internal/notify"
)

// Friday.
var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func bill(id string, amount int64, due time.Time) ledger.LineItem {
	return ledger.LineItem{
		ID:      id,
		Amount:  decimal.NewFromInt(amount),
		Date:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		DueDate: &due,
		Status:  ledger.ItemUnpaid,
	}
}

func sale(id string, amount int64, on time.Time, payments ...int64) ledger.LineItem {
	li := ledger.LineItem{ID: id, Amount: decimal.NewFromInt(amount), Date: on, Status: ledger.ItemUnpaid}
	for i, p := range payments {
		li.Payments = append(li.Payments, ledger.Payment{
			ID:     id + "-p" + string(rune('0'+i)),
			Amount: decimal.NewFromInt(p),
			Date:   on,
			Method: ledger.MethodCash,
		})
	}

	return li
}

func entity(id, name string, items ...ledger.LineItem) ledger.Entity {
	return ledger.Recompute(ledger.Entity{ID: id, Name: name, Mobile: id, LineItems: items}, now)
}

func fixtures() (ledger.Collection, ledger.Collection) {
	paidBill := bill("b4", 100, now.AddDate(0, 0, -10))
	paidBill.Status = ledger.ItemPaid

	creditors := ledger.Collection{Kind: ledger.KindPayable, Entities: []ledger.Entity{
		entity("s1", "Sharma Traders",
			bill("b1", 5000, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)),
			bill("b2", 1200, time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC)),
			bill("b3", 700, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)),
			paidBill,
		),
	}}

	customers := ledger.Collection{Kind: ledger.KindReceivable, Entities: []ledger.Entity{
		entity("c1", "Ravi", sale("t1", 1000, now.AddDate(0, 0, -35))),
		entity("c2", "Meena", sale("t2", 400, now.AddDate(0, 0, -36))),
		entity("c3", "Anita", sale("t3", 900, now.AddDate(0, 0, -35), 100)),
		entity("c4", "Kiran", sale("t4", 200, now.AddDate(0, 0, -7))),
	}}

	return customers, creditors
}

func TestReminders(t *testing.T) {
	customers, creditors := fixtures()

	got := notify.Reminders(customers, creditors, notify.DefaultSettings(), now, "INR")
	require.Len(t, got, 3)

	assert.Equal(t, notify.Notification{
		Type:     notify.TypeDueSoon,
		Tag:      "due-soon-b1",
		Title:    "Payment due soon",
		Body:     "Sharma Traders: ₹5,000.00 due in 2 days",
		EntityID: "s1",
		ItemID:   "b1",
	}, got[0])

	assert.Equal(t, notify.TypeOverdue, got[1].Type)
	assert.Equal(t, "overdue-b2", got[1].Tag)
	assert.Equal(t, "Sharma Traders: ₹1,200.00 overdue by 6 days", got[1].Body)

	assert.Equal(t, notify.TypeReceivable, got[2].Type)
	assert.Equal(t, "receivable-c1", got[2].Tag)
	assert.Equal(t, "Ravi: ₹1,000.00 pending for 35 days", got[2].Body)
}

func TestReminders_Settings(t *testing.T) {
	customers, creditors := fixtures()

	t.Run("disabled", func(t *testing.T) {
		s := notify.DefaultSettings()
		s.Enabled = false

		assert.Empty(t, notify.Reminders(customers, creditors, s, now, "INR"))
	})

	t.Run("no overdue reminders", func(t *testing.T) {
		s := notify.DefaultSettings()
		s.OverdueReminders = false

		for _, n := range notify.Reminders(customers, creditors, s, now, "INR") {
			assert.NotEqual(t, notify.TypeOverdue, n.Type)
		}
	})

	t.Run("wider reminder window", func(t *testing.T) {
		s := notify.DefaultSettings()
		s.ReminderDays = 10

		var dueSoon []string
		for _, n := range notify.Reminders(customers, creditors, s, now, "INR") {
			if n.Type == notify.TypeDueSoon {
				dueSoon = append(dueSoon, n.ItemID)
			}
		}

		assert.Equal(t, []string{"b1", "b3"}, dueSoon)
	})
}

func TestWeeklyReport(t *testing.T) {
	customers, creditors := fixtures()

	n := notify.WeeklyReport(customers, creditors, now, "INR")

	assert.Equal(t, notify.TypeWeeklyReport, n.Type)
	assert.Equal(t, "weekly-report", n.Tag)
	assert.Equal(t, "Receivables: ₹2,400.00 (3 pending) | Payables: ₹6,900.00 (1 pending)", n.Body)
}

func TestNextWeeklyReport(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "friday",
			now:  now,
			want: time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday before nine",
			now:  time.Date(2024, 3, 3, 8, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday at nine",
			now:  time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "saturday night",
			now:  time.Date(2024, 3, 2, 23, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, notify.NextWeeklyReport(tt.now))
		})
	}
}

func newSource(t *testing.T) *ledger.Service {
	t.Helper()

	repo := store.NewMemory()
	customers, creditors := fixtures()

	require.NoError(t, repo.Save(context.Background(), customers))
	require.NoError(t, repo.Save(context.Background(), creditors))

	return ledger.NewService(repo, nil)
}

func TestScheduler_CheckSendsOncePerDay(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := notify.NewMockNotifier(ctrl)

	clock := now
	s := notify.NewScheduler(newSource(t), notifier, notify.DefaultSettings(), "INR", time.Hour).
		WithClock(func() time.Time { return clock })

	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	n, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	clock = now.Add(time.Hour)

	n, err = s.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestScheduler_NotifierError(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := notify.NewMockNotifier(ctrl)

	s := notify.NewScheduler(newSource(t), notifier, notify.DefaultSettings(), "INR", time.Hour).
		WithClock(func() time.Time { return now })

	boom := errors.New("push service down")
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(boom)

	_, err := s.Check(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestScheduler_WeeklyReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := notify.NewMockNotifier(ctrl)

	s := notify.NewScheduler(newSource(t), notifier, notify.DefaultSettings(), "INR", time.Hour).
		WithClock(func() time.Time { return now })

	// off by default
	require.NoError(t, s.SendWeeklyReport(context.Background()))

	settings := s.Settings()
	settings.WeeklyReports = true
	require.NoError(t, s.UpdateSettings(settings))

	notifier.EXPECT().Notify(gomock.Any(), gomock.Cond(func(x any) bool {
		n, ok := x.(notify.Notification)
		return ok && n.Type == notify.TypeWeeklyReport
	})).Return(nil)

	require.NoError(t, s.SendWeeklyReport(context.Background()))
}

func TestScheduler_UpdateSettingsValidation(t *testing.T) {
	s := notify.NewScheduler(newSource(t), notify.LogNotifier{}, notify.DefaultSettings(), "INR", time.Hour)

	err := s.UpdateSettings(notify.Settings{Enabled: true, ReminderDays: -1})
	assert.ErrorIs(t, err, ledger.ErrValidation)
	assert.Equal(t, 3, s.Settings().ReminderDays)
}

func TestScheduler_Run(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := notify.NewMockNotifier(ctrl)

	s := notify.NewScheduler(newSource(t), notifier, notify.DefaultSettings(), "INR", time.Hour).
		WithClock(func() time.Time { return now })

	ctx, cancel := context.WithCancel(context.Background())

	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// the initial check runs before the first tick
	require.Eventually(t, func() bool { return ctrl.Satisfied() }, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
