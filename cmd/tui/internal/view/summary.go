package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/khata/internal/ledger"
	"github.com/MrJamesThe3rd/khata/internal/notify"
	"github.com/MrJamesThe3rd/khata/internal/report"
)

// SummaryModel is the dashboard: totals for both books, overdue balances and
// the reminders that would fire now.
type SummaryModel struct {
	CommonModel
	ledger   *ledger.Service
	settings notify.Settings
	currency string

	summary   report.Summary
	reminders []notify.Notification
	loading   bool
	err       error
}

func NewSummaryModel(svc *ledger.Service, settings notify.Settings, currency string) SummaryModel {
	return SummaryModel{
		ledger:   svc,
		settings: settings,
		currency: currency,
		loading:  true,
	}
}

func (m SummaryModel) Title() string     { return "Summary" }
func (m SummaryModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m SummaryModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSummaryMsg:
		m.loading = false
		m.err = msg.err
		m.summary = msg.summary
		m.reminders = msg.reminders

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m SummaryModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading summary...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(m.err))
	}

	s := m.summary
	bold := lipgloss.NewStyle().Bold(true)

	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", bold.Render("Receivables"))
	fmt.Fprintf(&b, "  %d customers, %d unpaid\n", s.Customers, s.UnpaidCustomers)
	fmt.Fprintf(&b, "  Total due: %s\n\n", activeStyle(FormatAmount(s.TotalReceivables, m.currency)))

	fmt.Fprintf(&b, "%s\n", bold.Render("Payables"))
	fmt.Fprintf(&b, "  %d creditors, %d unpaid\n", s.Creditors, s.UnpaidCreditors)
	fmt.Fprintf(&b, "  Total owed: %s\n\n", activeStyle(FormatAmount(s.TotalPayables, m.currency)))

	fmt.Fprintf(&b, "%s %s\n", bold.Render("Net position:"), FormatAmount(s.NetPosition, m.currency))

	writeBalances(&b, "Overdue customers", s.OverdueReceivables, m.currency)
	writeBalances(&b, "Overdue payables", s.OverduePayables, m.currency)

	if len(s.Recent) > 0 {
		fmt.Fprintf(&b, "\n%s\n", bold.Render("Recent activity"))

		for _, a := range s.Recent {
			fmt.Fprintf(&b, "  %s  %-20s %14s  %s\n",
				FormatDate(a.Item.Date), a.EntityName, FormatAmount(a.Item.Amount, m.currency), a.Item.Status)
		}
	}

	if len(m.reminders) > 0 {
		fmt.Fprintf(&b, "\n%s\n", bold.Render("Reminders"))

		for _, n := range m.reminders {
			fmt.Fprintf(&b, "  %s: %s\n", n.Title, n.Body)
		}
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

func writeBalances(b *strings.Builder, title string, entities []ledger.Entity, currency string) {
	if len(entities) == 0 {
		return
	}

	fmt.Fprintf(b, "\n%s\n", lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")).Render(title))

	for _, e := range entities {
		fmt.Fprintf(b, "  %-20s %s\n", e.Name, FormatAmount(e.OutstandingTotal, currency))
	}
}

type loadSummaryMsg struct {
	summary   report.Summary
	reminders []notify.Notification
	err       error
}

func (m SummaryModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		customers, err := m.ledger.Collection(ctx, ledger.KindReceivable)
		if err != nil {
			return loadSummaryMsg{err: err}
		}

		creditors, err := m.ledger.Collection(ctx, ledger.KindPayable)
		if err != nil {
			return loadSummaryMsg{err: err}
		}

		now := time.Now().UTC()

		return loadSummaryMsg{
			summary:   report.Summarise(customers, creditors, now),
			reminders: notify.Reminders(customers, creditors, m.settings, now, m.currency),
		}
	}
}
