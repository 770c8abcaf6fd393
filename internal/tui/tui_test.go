package tui

import (
	"net"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macwatch/internal/host"
	"macwatch/internal/hwaddr"
	"macwatch/internal/inspect"
)

type fakeSource struct {
	hosts  []host.Record
	alerts []inspect.Alert
	stats  inspect.Stats
}

func (f fakeSource) Hosts() []host.Record { return f.hosts }
func (f fakeSource) Alerts(limit int) []inspect.Alert { return f.alerts }
func (f fakeSource) Stats() inspect.Stats { return f.stats }

func TestTickRefreshesTable(t *testing.T) {
	ts := time.Date(2026, 10, 19, 8, 30, 0, 0, time.Local)
	src := fakeSource{
		hosts: []host.Record{{
			MAC:      hwaddr.MustParse("00:11:22:33:44:55"),
			IPs:      []net.IP{net.ParseIP("192.168.1.10")},
			LastSeen: ts,
			Packets:  3,
			Bytes:    300,
			Router:   true,
		}},
		alerts: []inspect.Alert{{Type: inspect.AlertNewHost, Message: "New host 00:11:22:33:44:55", Timestamp: ts}},
		stats:  inspect.Stats{Frames: 3, Tracked: 1, NewHosts: 1},
	}

	updated, cmd := NewHostModel(src, "eth0").Update(TickMsg(ts))
	require.NotNil(t, cmd)
	m := updated.(HostModel)

	rows := m.table.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "00:11:22:33:44:55", rows[0][0])
	assert.Equal(t, "192.168.1.10", rows[0][1])
	assert.Equal(t, "3", rows[0][2])
	assert.Equal(t, "08:30:00", rows[0][4])
	assert.Equal(t, "yes", rows[0][5])

	view := m.View()
	assert.Contains(t, view, "macwatch - Monitoring: eth0")
	assert.Contains(t, view, "New host 00:11:22:33:44:55")
}

func TestQuitKey(t *testing.T) {
	_, cmd := NewHostModel(fakeSource{}, "eth0").Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestEmptyView(t *testing.T) {
	view := NewHostModel(fakeSource{}, "capture.pcap").View()
	assert.Contains(t, view, "No alerts yet.")
}
