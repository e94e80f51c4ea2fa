package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/khata/internal/importer"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateKindSelect importState = iota
	importStateFilePick
	importStateDecoding
	importStatePreview
	importStateResult
)

type ImportModel struct {
	CommonModel
	ledger        *ledger.Service
	importService *importer.Service
	currency      string

	state        importState
	filePicker   filepicker.Model
	selectedKind ledger.Kind
	kindOptions  []ledger.Kind
	kindCursor   int

	incoming    ledger.Collection
	previewList list.Model

	status string
	err    error
}

func NewImportModel(svc *ledger.Service, impSvc *importer.Service, currency string) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".json"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.Height = 15

	return ImportModel{
		ledger:        svc,
		importService: impSvc,
		currency:      currency,
		filePicker:    fp,
		kindOptions:   []ledger.Kind{ledger.KindReceivable, ledger.KindPayable},
	}
}

func (m ImportModel) Title() string { return "Import Ledger File" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStatePreview {
		return "Enter: merge | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateKindSelect {
			return m.updateKindSelect(msg)
		}

		if m.state == importStatePreview {
			return m.updatePreview(msg)
		}

	case decodeResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.incoming = msg.incoming
		m.state = importStatePreview

		items := make([]list.Item, len(msg.incoming.Entities))
		for i, e := range msg.incoming.Entities {
			items[i] = previewItem{entity: e, match: msg.matches[i]}
		}

		m.previewList = list.New(items, previewDelegate{currency: m.currency}, 80, 20)
		m.previewList.Title = fmt.Sprintf("%d %s in file", len(items), kindTitle(m.selectedKind))
		m.previewList.SetShowStatusBar(false)
		m.previewList.SetFilteringEnabled(false)
		m.previewList.SetShowHelp(false)

		return m, nil

	case mergeResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		r := msg.report
		m.status = fmt.Sprintf("Merged: %d matched, %d added, %d bills carried over, %d duplicates skipped.",
			r.Matched, r.Added, r.LineItems, r.Duplicates)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateDecoding
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.decodeCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateKindSelect
		return m, nil
	case importStateResult, importStatePreview:
		m.state = importStateKindSelect
		m.incoming = ledger.Collection{}
		m.err = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateKindSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.kindCursor > 0 {
			m.kindCursor--
		}
	case tea.KeyDown:
		if m.kindCursor < len(m.kindOptions)-1 {
			m.kindCursor++
		}
	case tea.KeyEnter:
		m.selectedKind = m.kindOptions[m.kindCursor]
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		m.status = "Merging..."
		return m, m.mergeCmd()
	}

	var cmd tea.Cmd
	m.previewList, cmd = m.previewList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateKindSelect:
		return m.viewKindSelect()
	case importStateFilePick:
		return m.viewFilePick()
	case importStateDecoding:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStatePreview:
		return lipgloss.NewStyle().Padding(1).Render(m.previewList.View())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewKindSelect() string {
	s := "Import into:\n\n"

	for i, kind := range m.kindOptions {
		cursor := " "
		if i == m.kindCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, kindTitle(kind))
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewFilePick() string {
	return lipgloss.NewStyle().Padding(1).Render(
		fmt.Sprintf("Select %s export file:\n\n%s", kindTitle(m.selectedKind), m.filePicker.View()),
	)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.status) +
				"\n\n(Esc to go back)",
		)
	}

	return style.Render(
		lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.status) +
			"\n\n(Esc to go back)",
	)
}

// Messages

type decodeResultMsg struct {
	incoming ledger.Collection
	matches  []string // stored entity name each incoming entity merges into, or ""
	err      error
}

type mergeResultMsg struct {
	report ledger.MergeReport
	err    error
}

func (m ImportModel) decodeCmd(path string) tea.Cmd {
	kind := m.selectedKind

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return decodeResultMsg{err: err}
		}
		defer f.Close()

		incoming, err := m.importService.Decode(kind, f)
		if err != nil {
			return decodeResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		stored, err := m.ledger.Collection(ctx, kind)
		if err != nil {
			return decodeResultMsg{err: err}
		}

		matches := make([]string, len(incoming.Entities))
		for i, in := range incoming.Entities {
			for _, e := range stored.Entities {
				if ledger.SameEntity(e, in) {
					matches[i] = e.Name
					break
				}
			}
		}

		return decodeResultMsg{incoming: incoming, matches: matches}
	}
}

func (m ImportModel) mergeCmd() tea.Cmd {
	incoming := m.incoming

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		report, err := m.importService.Apply(ctx, incoming)

		return mergeResultMsg{report: report, err: err}
	}
}

// Preview list item

type previewItem struct {
	entity ledger.Entity
	match  string
}

func (i previewItem) Title() string       { return i.entity.Name }
func (i previewItem) Description() string { return i.entity.Mobile }
func (i previewItem) FilterValue() string { return i.entity.Name }

// Preview list delegate

type previewDelegate struct {
	currency string
}

func (d previewDelegate) Height() int                             { return 2 }
func (d previewDelegate) Spacing() int                            { return 0 }
func (d previewDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d previewDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(previewItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	e := item.entity

	line1 := fmt.Sprintf("%s%s  %s  %d bills  %s",
		cursor, e.Name, e.Mobile, len(e.LineItems), FormatAmount(e.OutstandingTotal, d.currency))

	line2 := "      New entry"
	if item.match != "" {
		line2 = "      Merges into: " + item.match
	}

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
