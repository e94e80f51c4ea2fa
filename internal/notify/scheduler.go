package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

// Source loads a ledger collection.
type Source interface {
	Collection(ctx context.Context, kind ledger.Kind) (ledger.Collection, error)
}

// Scheduler checks for reminders on an interval and sends the weekly report
// on Sunday mornings. Each reminder tag is sent at most once per day.
type Scheduler struct {
	source   Source
	notifier Notifier
	currency string
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	settings Settings
	sent     map[string]string // tag -> day last sent
}

func NewScheduler(source Source, notifier Notifier, settings Settings, currency string, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}

	return &Scheduler{
		source:   source,
		notifier: notifier,
		currency: currency,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		settings: settings,
		sent:     make(map[string]string),
	}
}

// WithClock replaces the scheduler's clock.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

func (s *Scheduler) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.settings
}

func (s *Scheduler) UpdateSettings(settings Settings) error {
	if settings.ReminderDays < 0 {
		return &ledger.ValidationError{Field: "reminderDays", Reason: "must not be negative"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = settings

	return nil
}

// Pending returns every reminder due now without sending anything.
func (s *Scheduler) Pending(ctx context.Context) ([]Notification, error) {
	customers, creditors, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	return Reminders(customers, creditors, s.Settings(), s.now(), s.currency), nil
}

// Check sends the reminders not yet sent today and returns how many went out.
func (s *Scheduler) Check(ctx context.Context) (int, error) {
	pending, err := s.Pending(ctx)
	if err != nil {
		return 0, err
	}

	today := s.now().Format(time.DateOnly)
	sent := 0

	s.mu.Lock()
	for tag, day := range s.sent {
		if day != today {
			delete(s.sent, tag)
		}
	}
	s.mu.Unlock()

	for _, n := range pending {
		s.mu.Lock()
		already := s.sent[n.Tag] == today
		s.mu.Unlock()

		if already {
			continue
		}

		if err := s.notifier.Notify(ctx, n); err != nil {
			return sent, fmt.Errorf("sending %s: %w", n.Tag, err)
		}

		s.mu.Lock()
		s.sent[n.Tag] = today
		s.mu.Unlock()

		sent++
	}

	return sent, nil
}

// SendWeeklyReport sends the report when weekly reports are enabled.
func (s *Scheduler) SendWeeklyReport(ctx context.Context) error {
	settings := s.Settings()
	if !settings.Enabled || !settings.WeeklyReports {
		return nil
	}

	customers, creditors, err := s.load(ctx)
	if err != nil {
		return err
	}

	return s.notifier.Notify(ctx, WeeklyReport(customers, creditors, s.now(), s.currency))
}

// Run checks immediately and then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	weekly := time.NewTimer(NextWeeklyReport(s.now()).Sub(s.now()))
	defer weekly.Stop()

	s.check(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		case <-weekly.C:
			if err := s.SendWeeklyReport(ctx); err != nil {
				slog.Error("failed to send weekly report", "error", err)
			}

			weekly.Reset(NextWeeklyReport(s.now()).Sub(s.now()))
		}
	}
}

func (s *Scheduler) check(ctx context.Context) {
	n, err := s.Check(ctx)
	if err != nil {
		slog.Error("failed to check reminders", "error", err)
		return
	}

	if n > 0 {
		slog.Info("sent reminders", "count", n)
	}
}

func (s *Scheduler) load(ctx context.Context) (ledger.Collection, ledger.Collection, error) {
	customers, err := s.source.Collection(ctx, ledger.KindReceivable)
	if err != nil {
		return ledger.Collection{}, ledger.Collection{}, err
	}

	creditors, err := s.source.Collection(ctx, ledger.KindPayable)
	if err != nil {
		return ledger.Collection{}, ledger.Collection{}, err
	}

	return customers, creditors, nil
}
