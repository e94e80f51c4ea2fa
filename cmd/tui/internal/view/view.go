package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

var (
	_ View = ListModel{}
	_ View = DetailModel{}
	_ View = SummaryModel{}
	_ View = ImportModel{}
	_ View = ExportModel{}
)
