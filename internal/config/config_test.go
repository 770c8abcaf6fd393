package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macwatch/internal/errors"
	"macwatch/internal/logging"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "macwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
capture:
  interface: eth0
  filter: "not port 22"
tracking:
  host_capacity: 64
  max_hosts: 1000
  host_timeout: 10m
  routers:
    - "02:00:5e:10:00:01"
    - "02:00:5E:10:00:02"
log:
  level: debug
  format: json
metrics_listen: ":9110"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "eth0", cfg.Capture.Interface)
	assert.Equal(t, "not port 22", cfg.Capture.Filter)
	assert.True(t, cfg.Capture.Promisc, "default kept")
	assert.Equal(t, 64, cfg.Tracking.HostCapacity)
	assert.Equal(t, 1000, cfg.Tracking.MaxHosts)
	assert.Equal(t, 10*time.Minute, cfg.Tracking.HostTimeout)
	assert.Equal(t, time.Minute, cfg.Tracking.ExpireInterval, "default kept")
	assert.Len(t, cfg.Tracking.Routers, 2)
	assert.Equal(t, ":9110", cfg.MetricsListen)

	lc := cfg.Logging()
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.Equal(t, "json", lc.Format)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "capture:\n  iface: eth0\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidFormat, errors.GetKind(err))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, errors.KindUnavailable, errors.GetKind(err))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		kind   errors.Kind
	}{
		{"no source", func(c *Config) {}, errors.KindInvalidArgument},
		{"both sources", func(c *Config) { c.Capture.Interface = "eth0"; c.Capture.File = "x.pcap" }, errors.KindInvalidArgument},
		{"negative capacity", func(c *Config) { c.Capture.Interface = "eth0"; c.Tracking.HostCapacity = -1 }, errors.KindInvalidArgument},
		{"bad router", func(c *Config) { c.Capture.Interface = "eth0"; c.Tracking.Routers = []string{"gg:11:22:33:44:55"} }, errors.KindInvalidFormat},
		{"bad level", func(c *Config) { c.Capture.Interface = "eth0"; c.Log.Level = "loud" }, errors.KindInvalidArgument},
		{"bad format", func(c *Config) { c.Capture.Interface = "eth0"; c.Log.Format = "xml" }, errors.KindInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, tc.kind, errors.GetKind(err))
		})
	}

	ok := Default()
	ok.Capture.File = "trace.pcap"
	assert.NoError(t, ok.Validate())
}
