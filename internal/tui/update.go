package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"macwatch/internal/host"
)

func (m HostModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case TickMsg:
		m.refresh()
		return m, tickCmd()
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *HostModel) refresh() {
	m.hosts = m.source.Hosts()
	m.alerts = m.source.Alerts(5)
	m.stats = m.source.Stats()

	rows := make([]table.Row, len(m.hosts))
	for i, h := range m.hosts {
		rows[i] = hostRow(h)
	}
	m.table.SetRows(rows)
}

func hostRow(h host.Record) table.Row {
	router := ""
	if h.Router {
		router = "yes"
	}
	return table.Row{
		h.MAC.String(),
		strings.Join(h.IPStrings(), ","),
		strconv.FormatInt(h.Packets, 10),
		strconv.FormatInt(h.Bytes, 10),
		h.LastSeen.Format("15:04:05"),
		router,
	}
}
