package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(0, 1)

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))
)

func (m HostModel) View() string {
	title := titleStyle.Render(fmt.Sprintf("macwatch - Monitoring: %s", m.label))

	counters := fmt.Sprintf("Frames: %d (ignored %d)\nHosts: %d tracked, %d new, %d expired\nRouters: %d whitelisted, %d rogue",
		m.stats.Frames, m.stats.Ignored,
		m.stats.Tracked, m.stats.NewHosts, m.stats.Expired,
		m.stats.Routers, m.stats.RogueRouters)
	statsBox := infoStyle.Render(counters)

	var alertStrs []string
	for _, a := range m.alerts {
		alertStrs = append(alertStrs, alertStyle.Render(fmt.Sprintf("%s %s", a.Timestamp.Format("15:04:05"), a.Message)))
	}
	if len(alertStrs) == 0 {
		alertStrs = append(alertStrs, "No alerts yet.")
	}
	alertBox := infoStyle.Render("Alerts:\n" + strings.Join(alertStrs, "\n"))

	hostBox := infoStyle.Render("Hosts\n" + m.table.View())

	row1 := lipgloss.JoinHorizontal(lipgloss.Top, statsBox, alertBox)
	body := lipgloss.JoinVertical(lipgloss.Left, title, row1, hostBox)

	return body + "\nPress q to quit."
}
