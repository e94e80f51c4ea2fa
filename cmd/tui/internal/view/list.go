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

type listState int

const (
	listStateBrowse listState = iota
	listStateCreate
)

var statusFilters = []ledger.Status{"", ledger.StatusUnpaid, ledger.StatusPartial, ledger.StatusPaid}

// OpenEntityMsg asks the root model to show one entity.
type OpenEntityMsg struct {
	Kind ledger.Kind
	ID   string
}

// entityForm holds the create form bindings. It lives on the heap so the
// form keeps pointing at it while the model is copied around.
type entityForm struct {
	name        string
	mobile      string
	category    ledger.EntityCategory
	amount      string
	date        string
	description string
	dueDate     string
}

type ListModel struct {
	CommonModel
	ledger   *ledger.Service
	kind     ledger.Kind
	currency string

	state    listState
	table    table.Model
	entities []ledger.Entity
	visible  []ledger.Entity
	form     *huh.Form
	fields   *entityForm

	statusFilterIdx int

	loading bool
	err     error
	status  string
}

func NewListModel(svc *ledger.Service, kind ledger.Kind, currency string) ListModel {
	columns := []table.Column{
		{Title: "Name", Width: 22},
		{Title: "Mobile", Width: 14},
		{Title: "Status", Width: 9},
		{Title: "Last Activity", Width: 14},
		{Title: "Outstanding", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		ledger:   svc,
		kind:     kind,
		currency: currency,
		table:    t,
		loading:  true,
	}
}

func (m ListModel) Title() string { return kindTitle(m.kind) }

func (m ListModel) ShortHelp() string {
	if m.state == listStateCreate {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | Enter: open | n: new | x: delete | s: status filter | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.entities = msg.entities
		m.refreshTable()

		return m, nil

	case listSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateCreate:
		return m.updateCreate(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(statusFilters)
			m.refreshTable()

			return m, nil
		case "n":
			return m.enterCreateMode()
		case "x":
			return m, m.deleteCmd()
		case "enter":
			if e, ok := m.selected(); ok {
				kind, id := m.kind, e.ID
				return m, func() tea.Msg { return OpenEntityMsg{Kind: kind, ID: id} }
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) enterCreateMode() (tea.Model, tea.Cmd) {
	m.fields = &entityForm{category: ledger.CategoryOther}

	identity := []huh.Field{
		huh.NewInput().
			Key("name").
			Title("Name").
			Value(&m.fields.name),

		huh.NewInput().
			Key("mobile").
			Title("Mobile").
			Value(&m.fields.mobile).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("mobile cannot be empty")
				}
				return nil
			}),
	}

	if m.kind == ledger.KindPayable {
		identity = append(identity, huh.NewSelect[ledger.EntityCategory]().
			Key("category").
			Title("Category").
			Options(
				huh.NewOption("Supplier", ledger.CategorySupplier),
				huh.NewOption("Lender", ledger.CategoryLender),
				huh.NewOption("Service", ledger.CategoryService),
				huh.NewOption("Other", ledger.CategoryOther),
			).
			Value(&m.fields.category))
	}

	bill := []huh.Field{
		huh.NewInput().
			Key("amount").
			Title("Amount").
			Value(&m.fields.amount).
			Validate(validateAmount),

		huh.NewInput().
			Key("date").
			Title("Date").
			Placeholder("YYYY-MM-DD, empty for today").
			Value(&m.fields.date).
			Validate(validateDate),

		huh.NewInput().
			Key("description").
			Title("Description").
			Value(&m.fields.description),
	}

	if m.kind == ledger.KindPayable {
		bill = append(bill, huh.NewInput().
			Key("dueDate").
			Title("Due Date").
			Placeholder("YYYY-MM-DD, optional").
			Value(&m.fields.dueDate).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return nil
				}
				return validateDate(s)
			}))
	}

	m.form = huh.NewForm(
		huh.NewGroup(identity...),
		huh.NewGroup(bill...),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateCreate
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = listStateBrowse
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

	return m, m.createCmd()
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading " + strings.ToLower(kindTitle(m.kind)) + "...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(m.err))
	}

	filter := "All"
	if s := statusFilters[m.statusFilterIdx]; s != "" {
		filter = string(s)
	}

	header := fmt.Sprintf("%s | [s] Status: %s | %d shown", kindTitle(m.kind), activeStyle(filter), len(m.visible))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == listStateCreate && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("New entry\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m ListModel) selected() (ledger.Entity, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return ledger.Entity{}, false
	}

	return m.visible[idx], true
}

func (m *ListModel) refreshTable() {
	want := statusFilters[m.statusFilterIdx]

	m.visible = nil
	for _, e := range m.entities {
		if want == "" || e.Status == want {
			m.visible = append(m.visible, e)
		}
	}

	rows := make([]table.Row, 0, len(m.visible))
	for _, e := range m.visible {
		rows = append(rows, table.Row{
			e.Name,
			e.Mobile,
			string(e.Status),
			FormatDate(e.LastActivityDate),
			FormatAmount(e.OutstandingTotal, m.currency),
		})
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Messages

type loadListMsg struct {
	entities []ledger.Entity
	err      error
}

func (m ListModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entities, err := m.ledger.List(ctx, m.kind)

		return loadListMsg{entities: entities, err: err}
	}
}

type listSaveMsg struct {
	status string
	err    error
}

func (m ListModel) createCmd() tea.Cmd {
	f := *m.fields
	kind := m.kind

	return func() tea.Msg {
		amount, err := parseAmount(f.amount)
		if err != nil {
			return listSaveMsg{err: err}
		}

		date, err := parseDate(f.date)
		if err != nil {
			return listSaveMsg{err: err}
		}

		item := ledger.LineItemParams{Amount: amount, Date: date, Description: f.description}

		identity := ledger.EntityParams{Name: f.name, Mobile: f.mobile}
		if kind == ledger.KindPayable {
			identity.Category = f.category

			if strings.TrimSpace(f.dueDate) != "" {
				due, err := parseDate(f.dueDate)
				if err != nil {
					return listSaveMsg{err: err}
				}

				item.DueDate = &due
			}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		e, err := m.ledger.Create(ctx, kind, identity, item)
		if err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: "Added " + e.Name}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	e, ok := m.selected()
	if !ok {
		return nil
	}

	kind := m.kind

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.ledger.Delete(ctx, kind, e.ID); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: "Deleted " + e.Name}
	}
}
