package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"macwatch/internal/host"
	"macwatch/internal/inspect"
)

// HostSource is what the dashboard polls on every tick.
type HostSource interface {
	Hosts() []host.Record
	Alerts(limit int) []inspect.Alert
	Stats() inspect.Stats
}

type TickMsg time.Time

type HostModel struct {
	source HostSource
	label  string
	table  table.Model

	hosts  []host.Record
	alerts []inspect.Alert
	stats  inspect.Stats
}

func NewHostModel(source HostSource, label string) HostModel {
	columns := []table.Column{
		{Title: "MAC", Width: 19},
		{Title: "IP", Width: 28},
		{Title: "Packets", Width: 10},
		{Title: "Bytes", Width: 12},
		{Title: "Last Seen", Width: 10},
		{Title: "Router", Width: 6},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return HostModel{
		source: source,
		label:  label,
		table:  t,
	}
}

func (m HostModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
