// Package config loads the macwatch YAML configuration.
package config

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	"macwatch/internal/capture"
	"macwatch/internal/errors"
	"macwatch/internal/hwaddr"
	"macwatch/internal/inspect"
	"macwatch/internal/logging"
)

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the top-level configuration file.
type Config struct {
	Capture       capture.Source `yaml:"capture"`
	Tracking      inspect.Config `yaml:"tracking"`
	Log           LogConfig      `yaml:"log"`
	MetricsListen string         `yaml:"metrics_listen"`
	Report        string         `yaml:"report"`
}

// Default returns a configuration with every field at its default.
func Default() Config {
	return Config{
		Capture:  capture.DefaultSource(),
		Tracking: inspect.DefaultConfig(),
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, errors.KindUnavailable, "read config %s", path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, errors.KindInvalidFormat, "parse config %s", path)
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.Capture.Interface == "" && c.Capture.File == "" {
		return errors.New(errors.KindInvalidArgument, "capture needs an interface or a pcap file")
	}
	if c.Capture.Interface != "" && c.Capture.File != "" {
		return errors.New(errors.KindInvalidArgument, "capture interface and pcap file are mutually exclusive")
	}
	if c.Tracking.HostCapacity < 0 {
		return errors.Attr(errors.New(errors.KindInvalidArgument, "host_capacity must not be negative"), "host_capacity", c.Tracking.HostCapacity)
	}
	if c.Tracking.HostTimeout < 0 {
		return errors.New(errors.KindInvalidArgument, "host_timeout must not be negative")
	}
	for _, r := range c.Tracking.Routers {
		if _, err := hwaddr.Parse(r); err != nil {
			return errors.Attr(err, "field", "tracking.routers")
		}
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, errors.KindInvalidArgument, "log.level")
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return errors.Errorf(errors.KindInvalidArgument, "log.format %q is not text or json", c.Log.Format)
	}
	return nil
}

// Logging converts the log section into a logging.Config.
func (c Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	if lvl, err := logging.ParseLevel(c.Log.Level); err == nil {
		cfg.Level = lvl
	}
	if c.Log.Format != "" {
		cfg.Format = c.Log.Format
	}
	return cfg
}
