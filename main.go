package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"macwatch/internal/capture"
	"macwatch/internal/config"
	"macwatch/internal/inspect"
	"macwatch/internal/logging"
	"macwatch/internal/metrics"
	"macwatch/internal/models"
	"macwatch/internal/reporting"
	"macwatch/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	interfaceName := flag.String("i", "", "Network interface to capture from (e.g., eth0, wlan0)")
	pcapFile := flag.String("r", "", "Read frames from a pcap file instead of an interface")
	filter := flag.String("f", "", "BPF capture filter")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address (e.g., :9110)")
	reportDir := flag.String("report", "", "Write an HTML session report into this directory on exit")
	headless := flag.Bool("headless", false, "Log events instead of drawing the dashboard")
	dump := flag.Bool("dump", false, "Log the content of every MAC set on exit (debug level)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	logFile := flag.String("log-file", "", "Append logs to this file (the dashboard discards them otherwise)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *interfaceName != "" {
		cfg.Capture.Interface = *interfaceName
	}
	if *pcapFile != "" {
		cfg.Capture.File = *pcapFile
	}
	if *filter != "" {
		cfg.Capture.Filter = *filter
	}
	if *metricsAddr != "" {
		cfg.MetricsListen = *metricsAddr
	}
	if *reportDir != "" {
		cfg.Report = *reportDir
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *dump {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "Example: ./macwatch -i eth0   or   ./macwatch -r trace.pcap -headless")
		os.Exit(2)
	}

	if err := run(cfg, *logFile, *headless, *dump); err != nil {
		fmt.Fprintln(os.Stderr, "macwatch:", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logFile string, headless, dump bool) error {
	logCfg := cfg.Logging()
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logCfg.Output = f
	case !headless:
		// anything on stderr would tear the alt screen
		logCfg.Output = io.Discard
	}
	logger := logging.New(logCfg)
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	in, err := inspect.New(cfg.Tracking, logger, m)
	if err != nil {
		return err
	}
	defer in.Close()

	if cfg.MetricsListen != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if err := m.Register(reg, in); err != nil {
			return err
		}
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsListen, reg, logger.WithComponent("metrics")); err != nil {
				logger.Error("metrics server stopped", logging.Err(err))
			}
		}()
	}

	observations := make(chan models.Observation, 1000)
	if err := capture.Start(ctx, cfg.Capture, observations, logger.WithComponent("capture")); err != nil {
		return err
	}

	processed := make(chan struct{})
	go func() {
		in.Run(ctx, observations)
		close(processed)
	}()

	if headless {
		select {
		case <-ctx.Done():
		case <-processed:
		}
	} else {
		p := tea.NewProgram(tui.NewHostModel(in, cfg.Capture.String()), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			logger.Error("dashboard exited", logging.Err(err))
		}
		stop()
		<-processed
	}

	if dump {
		in.Dump(context.Background())
	}

	if cfg.Report != "" {
		filename, err := reporting.GenerateSessionReport(in, "html", cfg.Report)
		if err != nil {
			return err
		}
		logger.Info("session report written", "file", filename)
	}

	s := in.Stats()
	logger.Info("session finished", "frames", s.Frames, "hosts", s.Tracked, "new", s.NewHosts, "expired", s.Expired, "rogue_routers", s.RogueRouters)
	return nil
}
