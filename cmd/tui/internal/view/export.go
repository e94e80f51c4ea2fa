package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/khata/internal/export"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

type exportState int

const (
	exportStateForm exportState = iota
	exportStateExporting
	exportStateResult
)

// exportTarget is what to write: one collection, or the zip of both.
type exportTarget string

const (
	exportCustomers exportTarget = exportTarget(ledger.KindReceivable)
	exportCreditors exportTarget = exportTarget(ledger.KindPayable)
	exportArchive   exportTarget = "archive"
)

type exportForm struct {
	target exportTarget
	path   string
}

type ExportModel struct {
	CommonModel
	exportService *export.Service
	ledger        *ledger.Service

	state   exportState
	err     error
	form    *huh.Form
	fields  *exportForm
	spinner spinner.Model
	summary string
}

func NewExportModel(svc *export.Service, l *ledger.Service) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := ExportModel{
		exportService: svc,
		ledger:        l,
		state:         exportStateForm,
		fields:        &exportForm{target: exportCustomers, path: "./exports"},
		spinner:       s,
	}
	m.form = m.buildForm()

	return m
}

func (m ExportModel) Title() string { return "Export Ledger" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case exportStateForm:
		return m.updateForm(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m ExportModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = exportStateExporting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(*m.fields))
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		m.err = result.err
		m.summary = result.body

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m ExportModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ExportModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[exportTarget]().
				Key("target").
				Title("Export").
				Options(
					huh.NewOption("Customers (JSON)", exportCustomers),
					huh.NewOption("Creditors (JSON)", exportCreditors),
					huh.NewOption("Everything (zip with statements)", exportArchive),
				).
				Value(&m.fields.target),

			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./exports").
				Value(&m.fields.path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateForm:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case exportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Exporting...", m.spinner.View()),
		)

	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ExportModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle(m.err))
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("46")).
		Render("Export Complete!")

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			m.summary,
		),
	)
}

type exportResultMsg struct {
	body string
	err  error
}

const exportTimeout = 2 * time.Minute

func (m ExportModel) runExportCmd(f exportForm) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		if f.target == exportArchive {
			return m.writeArchive(ctx, f.path)
		}

		kind := ledger.Kind(f.target)

		path, err := m.exportService.ExportToDir(ctx, kind, f.path)
		if err != nil {
			return exportResultMsg{err: err}
		}

		c, err := m.ledger.Collection(ctx, kind)
		if err != nil {
			return exportResultMsg{err: err}
		}

		return exportResultMsg{body: "Wrote " + path + "\n\n" + m.exportService.Statement(c)}
	}
}

func (m ExportModel) writeArchive(ctx context.Context, dir string) exportResultMsg {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return exportResultMsg{err: fmt.Errorf("failed to create directory: %w", err)}
	}

	tmp, err := os.CreateTemp(dir, "khata-*.zip")
	if err != nil {
		return exportResultMsg{err: err}
	}
	defer os.Remove(tmp.Name())

	name, err := m.exportService.Archive(ctx, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return exportResultMsg{err: err}
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return exportResultMsg{err: err}
	}

	return exportResultMsg{body: "Wrote " + path}
}
