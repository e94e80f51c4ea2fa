package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

type detailState int

const (
	detailStateBrowse detailState = iota
	detailStatePayment
	detailStateItem
)

// CloseEntityMsg returns from the detail screen to the list it came from.
type CloseEntityMsg struct {
	Kind ledger.Kind
}

type paymentForm struct {
	amount      string
	date        string
	method      ledger.Method
	description string
}

type itemForm struct {
	amount      string
	date        string
	description string
	category    ledger.ItemCategory
	dueDate     string
}

// DetailModel shows one entity's line items and records payments against them.
type DetailModel struct {
	CommonModel
	ledger   *ledger.Service
	kind     ledger.Kind
	id       string
	currency string

	state  detailState
	entity ledger.Entity
	table  table.Model
	form   *huh.Form

	payment *paymentForm
	item    *itemForm

	loading bool
	err     error
	status  string
}

func NewDetailModel(svc *ledger.Service, kind ledger.Kind, id, currency string) DetailModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 14},
		{Title: "Paid", Width: 14},
		{Title: "Remaining", Width: 14},
		{Title: "Status", Width: 8},
		{Title: "Description", Width: 30},
	}

	if kind == ledger.KindPayable {
		columns = append(columns, table.Column{Title: "Due", Width: 12})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return DetailModel{
		ledger:   svc,
		kind:     kind,
		id:       id,
		currency: currency,
		table:    t,
		loading:  true,
	}
}

func (m DetailModel) Title() string { return m.entity.Name }

func (m DetailModel) ShortHelp() string {
	if m.state != detailStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | p: add payment | m: mark paid | a: add bill | x: delete bill"
}

func (m DetailModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadEntityMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.setEntity(msg.entity)

		return m, nil

	case detailSaveMsg:
		m.state = detailStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.status = msg.status
		m.setEntity(msg.entity)

		return m, nil
	}

	if m.state == detailStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m DetailModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			kind := m.kind
			return m, func() tea.Msg { return CloseEntityMsg{Kind: kind} }
		case "p":
			return m.enterPaymentMode()
		case "a":
			return m.enterItemMode()
		case "m":
			return m, m.markPaidCmd()
		case "x":
			return m, m.deleteItemCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DetailModel) enterPaymentMode() (tea.Model, tea.Cmd) {
	li, ok := m.selected()
	if !ok || li.Status == ledger.ItemPaid {
		return m, nil
	}

	m.payment = &paymentForm{
		amount: ledger.LineItemRemaining(li).String(),
		method: ledger.MethodCash,
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(&m.payment.amount).
				Validate(validateAmount),

			huh.NewInput().
				Key("date").
				Title("Date").
				Placeholder("YYYY-MM-DD, empty for today").
				Value(&m.payment.date).
				Validate(validateDate),

			huh.NewSelect[ledger.Method]().
				Key("method").
				Title("Method").
				Options(
					huh.NewOption("Cash", ledger.MethodCash),
					huh.NewOption("Online", ledger.MethodOnline),
					huh.NewOption("Bank transfer", ledger.MethodBankTransfer),
					huh.NewOption("Cheque", ledger.MethodCheque),
					huh.NewOption("Other", ledger.MethodOther),
				).
				Value(&m.payment.method),

			huh.NewInput().
				Key("description").
				Title("Note").
				Value(&m.payment.description),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = detailStatePayment
	m.table.Blur()

	return m, m.form.Init()
}

func (m DetailModel) enterItemMode() (tea.Model, tea.Cmd) {
	m.item = &itemForm{category: ledger.ItemOther}

	fields := []huh.Field{
		huh.NewInput().
			Key("amount").
			Title("Amount").
			Value(&m.item.amount).
			Validate(validateAmount),

		huh.NewInput().
			Key("date").
			Title("Date").
			Placeholder("YYYY-MM-DD, empty for today").
			Value(&m.item.date).
			Validate(validateDate),

		huh.NewInput().
			Key("description").
			Title("Description").
			Value(&m.item.description),
	}

	if m.kind == ledger.KindPayable {
		fields = append(fields,
			huh.NewSelect[ledger.ItemCategory]().
				Key("category").
				Title("Category").
				Options(
					huh.NewOption("Purchase", ledger.ItemPurchase),
					huh.NewOption("Loan", ledger.ItemLoan),
					huh.NewOption("Service", ledger.ItemService),
					huh.NewOption("Rent", ledger.ItemRent),
					huh.NewOption("Other", ledger.ItemOther),
				).
				Value(&m.item.category),

			huh.NewInput().
				Key("dueDate").
				Title("Due Date").
				Placeholder("YYYY-MM-DD, optional").
				Value(&m.item.dueDate).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					return validateDate(s)
				}),
		)
	}

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(45).WithShowHelp(false)
	m.state = detailStateItem
	m.table.Blur()

	return m, m.form.Init()
}

func (m DetailModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = detailStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == detailStatePayment {
		return m, m.addPaymentCmd()
	}

	return m, m.addItemCmd()
}

func (m DetailModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(m.err))
	}

	e := m.entity

	label := "Total due"
	if m.kind == ledger.KindPayable {
		label = "Total owed"
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render(e.Name),
		fmt.Sprintf("Mobile: %s", e.Mobile),
		fmt.Sprintf("Status: %s | %s: %s | Last activity: %s",
			statusStyle(string(e.Status)), label,
			activeStyle(FormatAmount(e.OutstandingTotal, m.currency)),
			FormatDate(e.LastActivityDate)),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		m.table.View(),
	)

	if m.state != detailStateBrowse && m.form != nil {
		title := "New bill"
		if m.state == detailStatePayment {
			title = "Record payment"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *DetailModel) setEntity(e ledger.Entity) {
	m.entity = e

	rows := make([]table.Row, 0, len(e.LineItems))
	for _, li := range e.LineItems {
		row := table.Row{
			FormatDate(li.Date),
			FormatAmount(li.Amount, m.currency),
			FormatAmount(li.Paid(), m.currency),
			FormatAmount(ledger.LineItemRemaining(li), m.currency),
			string(li.Status),
			li.Description,
		}

		if m.kind == ledger.KindPayable {
			due := "-"
			if li.DueDate != nil {
				due = FormatDate(*li.DueDate)
			}

			row = append(row, due)
		}

		rows = append(rows, row)
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m DetailModel) selected() (ledger.LineItem, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.entity.LineItems) {
		return ledger.LineItem{}, false
	}

	return m.entity.LineItems[idx], true
}

// Messages

type loadEntityMsg struct {
	entity ledger.Entity
	err    error
}

func (m DetailModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		e, err := m.ledger.Get(ctx, m.kind, m.id)

		return loadEntityMsg{entity: e, err: err}
	}
}

type detailSaveMsg struct {
	entity ledger.Entity
	status string
	err    error
}

func (m DetailModel) addPaymentCmd() tea.Cmd {
	li, ok := m.selected()
	if !ok {
		return nil
	}

	f := *m.payment

	return func() tea.Msg {
		amount, err := parseAmount(f.amount)
		if err != nil {
			return detailSaveMsg{err: err}
		}

		params := ledger.PaymentParams{Amount: amount, Method: f.method, Description: f.description}
		if strings.TrimSpace(f.date) != "" {
			if params.Date, err = parseDate(f.date); err != nil {
				return detailSaveMsg{err: err}
			}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		e, err := m.ledger.AddPayment(ctx, m.kind, m.id, li.ID, params)
		if err != nil {
			return detailSaveMsg{err: err}
		}

		return detailSaveMsg{entity: e, status: "Payment of " + FormatAmount(amount, m.currency) + " recorded"}
	}
}

func (m DetailModel) addItemCmd() tea.Cmd {
	f := *m.item

	return func() tea.Msg {
		amount, err := parseAmount(f.amount)
		if err != nil {
			return detailSaveMsg{err: err}
		}

		date, err := parseDate(f.date)
		if err != nil {
			return detailSaveMsg{err: err}
		}

		params := ledger.LineItemParams{Amount: amount, Date: date, Description: f.description}
		if m.kind == ledger.KindPayable {
			params.Category = f.category

			if strings.TrimSpace(f.dueDate) != "" {
				due, err := parseDate(f.dueDate)
				if err != nil {
					return detailSaveMsg{err: err}
				}

				params.DueDate = &due
			}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		e, err := m.ledger.AddLineItem(ctx, m.kind, m.id, params)
		if err != nil {
			return detailSaveMsg{err: err}
		}

		return detailSaveMsg{entity: e, status: "Bill added"}
	}
}

func (m DetailModel) markPaidCmd() tea.Cmd {
	li, ok := m.selected()
	if !ok || li.Status == ledger.ItemPaid {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		e, err := m.ledger.MarkPaid(ctx, m.kind, m.id, li.ID)
		if err != nil {
			return detailSaveMsg{err: err}
		}

		return detailSaveMsg{entity: e, status: "Marked paid"}
	}
}

func (m DetailModel) deleteItemCmd() tea.Cmd {
	li, ok := m.selected()
	if !ok {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		e, err := m.ledger.DeleteLineItem(ctx, m.kind, m.id, li.ID)
		if err != nil {
			return detailSaveMsg{err: err}
		}

		return detailSaveMsg{entity: e, status: "Bill deleted"}
	}
}
