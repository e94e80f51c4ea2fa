// Package notify derives payment reminders and the weekly report from the
// ledgers and hands them to a Notifier.
package notify

import (
	"fmt"
	"math"
	"time"

	"github.com/MrJamesThe3rd/khata/internal/ledger"
	"github.com/MrJamesThe3rd/khata/internal/money"
	"github.com/MrJamesThe3rd/khata/internal/report"
)

type Type string

const (
	TypeDueSoon      Type = "due_soon"
	TypeOverdue      Type = "overdue"
	TypeReceivable   Type = "receivable_reminder"
	TypeWeeklyReport Type = "weekly_report"
)

const day = 24 * time.Hour

// Settings mirror the user's notification preferences.
type Settings struct {
	Enabled          bool
	ReminderDays     int // days before a due date to start reminding
	OverdueReminders bool
	WeeklyReports    bool
}

func DefaultSettings() Settings {
	return Settings{
		Enabled:          true,
		ReminderDays:     3,
		OverdueReminders: true,
	}
}

// Notification is one message for the user. Tag identifies what it is about;
// a newer notification with the same tag replaces an older one.
type Notification struct {
	Type     Type   `json:"type"`
	Tag      string `json:"tag"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	EntityID string `json:"entityId,omitempty"`
	ItemID   string `json:"itemId,omitempty"`
}

// Reminders lists the reminders due as of now:
//   - unpaid payables due within settings.ReminderDays,
//   - unpaid payables past their due date, when overdue reminders are on,
//   - unpaid customers whose last activity is at least 30 days old, on every
//     seventh day from then.
func Reminders(customers, creditors ledger.Collection, settings Settings, now time.Time, currency string) []Notification {
	if !settings.Enabled {
		return nil
	}

	var out []Notification

	horizon := now.Add(time.Duration(settings.ReminderDays) * day)

	for _, e := range creditors.Entities {
		for _, li := range e.LineItems {
			if li.Status == ledger.ItemPaid || li.DueDate == nil {
				continue
			}

			due := *li.DueDate
			amount := money.Format(ledger.LineItemRemaining(li), currency)

			if due.After(now) && !due.After(horizon) {
				n := daysCeil(due.Sub(now))
				out = append(out, Notification{
					Type:     TypeDueSoon,
					Tag:      "due-soon-" + li.ID,
					Title:    "Payment due soon",
					Body:     fmt.Sprintf("%s: %s due in %s", e.Name, amount, plural(n, "day")),
					EntityID: e.ID,
					ItemID:   li.ID,
				})
			}

			if settings.OverdueReminders && due.Before(now) {
				n := daysCeil(now.Sub(due))
				out = append(out, Notification{
					Type:     TypeOverdue,
					Tag:      "overdue-" + li.ID,
					Title:    "Payment overdue",
					Body:     fmt.Sprintf("%s: %s overdue by %s", e.Name, amount, plural(n, "day")),
					EntityID: e.ID,
					ItemID:   li.ID,
				})
			}
		}
	}

	for _, e := range customers.Entities {
		if e.Status != ledger.StatusUnpaid {
			continue
		}

		n := daysCeil(now.Sub(e.LastActivityDate))
		if n < 30 || n%7 != 0 {
			continue
		}

		out = append(out, Notification{
			Type:     TypeReceivable,
			Tag:      "receivable-" + e.ID,
			Title:    "Outstanding receivable",
			Body:     fmt.Sprintf("%s: %s pending for %d days", e.Name, money.Format(e.OutstandingTotal, currency), n),
			EntityID: e.ID,
		})
	}

	return out
}

// WeeklyReport summarises both ledgers in one notification.
func WeeklyReport(customers, creditors ledger.Collection, now time.Time, currency string) Notification {
	s := report.Summarise(customers, creditors, now)

	return Notification{
		Type:  TypeWeeklyReport,
		Tag:   "weekly-report",
		Title: "Weekly financial report",
		Body: fmt.Sprintf("Receivables: %s (%d pending) | Payables: %s (%d pending)",
			money.Format(s.TotalReceivables, currency), s.UnpaidCustomers,
			money.Format(s.TotalPayables, currency), s.UnpaidCreditors),
	}
}

// NextWeeklyReport returns the first Sunday 09:00 in now's location strictly
// after now.
func NextWeeklyReport(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, now.Location())
	next = next.AddDate(0, 0, (7-int(now.Weekday()))%7)

	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}

	return next
}

func daysCeil(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}

	return fmt.Sprintf("%d %ss", n, unit)
}
