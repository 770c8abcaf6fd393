// Package metrics exposes host-tracking counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"macwatch/internal/logging"
)

const namespace = "macwatch"

// Metrics holds the counters the inspector updates.
type Metrics struct {
	frames       prometheus.Counter
	ignored      prometheus.Counter
	hostsAdded   prometheus.Counter
	hostsRemoved *prometheus.CounterVec
	alerts       *prometheus.CounterVec
}

// HostSource is polled at scrape time for gauges.
type HostSource interface {
	HostCount() int
	ArenaCounts() (allocated, released int64)
}

func New() *Metrics {
	return &Metrics{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames handed to the inspector.",
		}),
		ignored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_ignored_total",
			Help:      "Frames without a unicast source address.",
		}),
		hostsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hosts_added_total",
			Help:      "Host records inserted into the host set.",
		}),
		hostsRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hosts_removed_total",
			Help:      "Host records removed from the host set.",
		}, []string{"reason"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alerts raised by type.",
		}, []string{"type"}),
	}
}

func (m *Metrics) Frame() { m.frames.Inc() }
func (m *Metrics) Ignored() { m.ignored.Inc() }
func (m *Metrics) HostAdded() { m.hostsAdded.Inc() }
func (m *Metrics) HostRemoved(reason string) { m.hostsRemoved.WithLabelValues(reason).Inc() }
func (m *Metrics) Alert(kind string) { m.alerts.WithLabelValues(kind).Inc() }

// Register adds the counters and the gauges backed by src to reg.
func (m *Metrics) Register(reg prometheus.Registerer, src HostSource) error {
	collectors := []prometheus.Collector{
		m.frames, m.ignored, m.hostsAdded, m.hostsRemoved, m.alerts,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hosts_tracked",
			Help:      "Hosts currently held in the host set.",
		}, func() float64 { return float64(src.HostCount()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_records_allocated_total",
			Help:      "Host records allocated from the arena.",
		}, func() float64 { a, _ := src.ArenaCounts(); return float64(a) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_records_released_total",
			Help:      "Host records returned to the arena.",
		}, func() float64 { _, r := src.ArenaCounts(); return float64(r) }),
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Serve exposes g on addr at /metrics until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, logger *logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
