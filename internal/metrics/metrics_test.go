package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	hosts              int
	allocated, release int64
}

func (f fakeSource) HostCount() int { return f.hosts }
func (f fakeSource) ArenaCounts() (int64, int64) { return f.allocated, f.release }

func TestCounters(t *testing.T) {
	m := New()
	m.Frame()
	m.Frame()
	m.Ignored()
	m.HostAdded()
	m.HostRemoved("expired")
	m.Alert("NEW_HOST")
	m.Alert("NEW_HOST")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.frames))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ignored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hostsAdded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hostsRemoved.WithLabelValues("expired")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.alerts.WithLabelValues("NEW_HOST")))
}

func TestRegisterGauges(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := New()
	require.NoError(t, m.Register(reg, fakeSource{hosts: 3, allocated: 5, release: 2}))

	expected := `
# HELP macwatch_hosts_tracked Hosts currently held in the host set.
# TYPE macwatch_hosts_tracked gauge
macwatch_hosts_tracked 3
# HELP macwatch_host_records_released_total Host records returned to the arena.
# TYPE macwatch_host_records_released_total counter
macwatch_host_records_released_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"macwatch_hosts_tracked", "macwatch_host_records_released_total"))

	assert.Error(t, m.Register(reg, fakeSource{}))
}
