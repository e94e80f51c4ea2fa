package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/khata/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/khata/internal/config"
	"github.com/MrJamesThe3rd/khata/internal/database"
	"github.com/MrJamesThe3rd/khata/internal/export"
	"github.com/MrJamesThe3rd/khata/internal/importer"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
	"github.com/MrJamesThe3rd/khata/internal/ledger/store"
	"github.com/MrJamesThe3rd/khata/internal/notify"
)

type model struct {
	ledgerService *ledger.Service
	importService *importer.Service
	exportService *export.Service
	settings      notify.Settings
	currency      string

	currentView View
	listOrigin  View

	customersView view.ListModel
	creditorsView view.ListModel
	detailView    view.DetailModel
	summaryView   view.SummaryModel
	importView    view.ImportModel
	exportView    view.ExportModel
}

type View int

const (
	ViewMenu      View = 0
	ViewCustomers View = 1
	ViewCreditors View = 2
	ViewSummary   View = 3
	ViewImport    View = 4
	ViewExport    View = 5
	ViewDetail    View = 6
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.DB.Driver, cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	ledgerSvc := ledger.NewService(store.New(db, cfg.DB.Driver), ledger.NewEngine())
	impSvc := importer.NewService(ledgerSvc)
	expSvc := export.NewService(ledgerSvc, cfg.App.Currency)

	settings := notify.Settings{
		Enabled:          cfg.Notify.Enabled,
		ReminderDays:     cfg.Notify.ReminderDays,
		OverdueReminders: cfg.Notify.OverdueReminders,
		WeeklyReports:    cfg.Notify.WeeklyReports,
	}

	return model{
		ledgerService: ledgerSvc,
		importService: impSvc,
		exportService: expSvc,
		settings:      settings,
		currency:      cfg.App.Currency,
		currentView:   ViewMenu,
		customersView: view.NewListModel(ledgerSvc, ledger.KindReceivable, cfg.App.Currency),
		creditorsView: view.NewListModel(ledgerSvc, ledger.KindPayable, cfg.App.Currency),
		summaryView:   view.NewSummaryModel(ledgerSvc, settings, cfg.App.Currency),
		importView:    view.NewImportModel(ledgerSvc, impSvc, cfg.App.Currency),
		exportView:    view.NewExportModel(expSvc, ledgerSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewCustomers
				m.customersView = view.NewListModel(m.ledgerService, ledger.KindReceivable, m.currency)

				return m, m.customersView.Init()
			case "2":
				m.currentView = ViewCreditors
				m.creditorsView = view.NewListModel(m.ledgerService, ledger.KindPayable, m.currency)

				return m, m.creditorsView.Init()
			case "3":
				m.currentView = ViewSummary
				m.summaryView = view.NewSummaryModel(m.ledgerService, m.settings, m.currency)

				return m, m.summaryView.Init()
			case "4":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.ledgerService, m.importService, m.currency)

				return m, m.importView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService, m.ledgerService)

				return m, m.exportView.Init()
			}
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	case view.OpenEntityMsg:
		m.listOrigin = m.currentView
		m.currentView = ViewDetail
		m.detailView = view.NewDetailModel(m.ledgerService, msg.Kind, msg.ID, m.currency)

		return m, m.detailView.Init()
	case view.CloseEntityMsg:
		m.currentView = m.listOrigin
		if m.currentView == ViewCreditors {
			return m, m.creditorsView.Init()
		}

		return m, m.customersView.Init()
	}

	switch m.currentView {
	case ViewCustomers:
		var newModel tea.Model
		newModel, cmd = m.customersView.Update(msg)
		m.customersView = newModel.(view.ListModel)
	case ViewCreditors:
		var newModel tea.Model
		newModel, cmd = m.creditorsView.Update(msg)
		m.creditorsView = newModel.(view.ListModel)
	case ViewDetail:
		var newModel tea.Model
		newModel, cmd = m.detailView.Update(msg)
		m.detailView = newModel.(view.DetailModel)
	case ViewSummary:
		var newModel tea.Model
		newModel, cmd = m.summaryView.Update(msg)
		m.summaryView = newModel.(view.SummaryModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Khata\n\n" +
				"1. Customers\n" +
				"2. Creditors\n" +
				"3. Summary\n" +
				"4. Import File\n" +
				"5. Export\n\n" +
				"q. Quit",
		)
	case ViewCustomers:
		return m.customersView.View()
	case ViewCreditors:
		return m.creditorsView.View()
	case ViewDetail:
		return m.detailView.View()
	case ViewSummary:
		return m.summaryView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
