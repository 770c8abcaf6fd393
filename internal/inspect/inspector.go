// Package inspect turns captured frames into host-tracking state: a
// whitelist of router addresses, the set of tracked hosts, and alerts.
package inspect

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"macwatch/internal/errors"
	"macwatch/internal/host"
	"macwatch/internal/hwaddr"
	"macwatch/internal/logging"
	"macwatch/internal/macset"
	"macwatch/internal/metrics"
	"macwatch/internal/models"
)

// Config holds the tracking parameters.
type Config struct {
	HostCapacity   int           `yaml:"host_capacity"`   // initial size of the host set
	MaxHosts       int           `yaml:"max_hosts"`       // arena bound, <= 0 for none
	HostTimeout    time.Duration `yaml:"host_timeout"`    // idle time before a host is dropped, 0 keeps hosts forever
	ExpireInterval time.Duration `yaml:"expire_interval"` // how often idle hosts are swept
	FullCooldown   time.Duration `yaml:"full_cooldown"`   // minimum gap between HOST_TABLE_FULL alerts
	AlertHistory   int           `yaml:"alert_history"`
	Routers        []string      `yaml:"routers"` // MACs allowed to send router advertisements
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		HostCapacity:   256,
		MaxHosts:       4096,
		HostTimeout:    5 * time.Minute,
		ExpireInterval: 1 * time.Minute,
		FullCooldown:   10 * time.Second,
		AlertHistory:   20,
	}
}

// Stats is a point-in-time view of the inspector counters.
type Stats struct {
	Frames       int64
	Ignored      int64
	NewHosts     int64
	Expired      int64
	RogueRouters int64
	Tracked      int
	Routers      int
	ArenaLive    int
}

// Inspector owns the MAC sets. All set access happens under mu.
type Inspector struct {
	mu sync.Mutex

	cfg     Config
	log     *logging.Logger
	metrics *metrics.Metrics

	routers *macset.Set[struct{}] // configured whitelist, markers only
	rogue   *macset.Set[struct{}] // non-whitelisted advertisers already reported
	hosts   *macset.HostSet

	alerts *alertLog
	stats  Stats

	lastFull      time.Time
	lastExpire    time.Time
	lastFrameTS   time.Time
	lastFrameWall time.Time
	closed        bool
}

// New builds an inspector. Invalid router entries fail construction;
// duplicates are logged and skipped.
func New(cfg Config, logger *logging.Logger, m *metrics.Metrics) (*Inspector, error) {
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = logging.Default()
	}
	log := logger.WithComponent("inspect")

	routers, err := macset.New[struct{}](len(cfg.Routers), nil)
	if err != nil {
		return nil, err
	}
	for _, r := range cfg.Routers {
		err := routers.AddMarkerString(r)
		switch {
		case errors.IsKind(err, errors.KindDuplicateKey):
			log.Warn("duplicate router address in config", "mac", r)
		case err != nil:
			routers.Destroy()
			return nil, errors.Attr(err, "field", "routers")
		}
	}

	rogue, err := macset.New[struct{}](0, nil)
	if err != nil {
		routers.Destroy()
		return nil, err
	}

	hosts, err := macset.NewHostSet(cfg.HostCapacity, host.NewArena(cfg.MaxHosts))
	if err != nil {
		routers.Destroy()
		rogue.Destroy()
		return nil, errors.Attr(err, "field", "host_capacity")
	}

	return &Inspector{
		cfg:     cfg,
		log:     log,
		metrics: m,
		routers: routers,
		rogue:   rogue,
		hosts:   hosts,
		alerts:  newAlertLog(cfg.AlertHistory),
	}, nil
}

// Process accounts one observation.
func (in *Inspector) Process(obs models.Observation) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return
	}

	in.stats.Frames++
	in.metrics.Frame()
	in.lastFrameTS = obs.Timestamp
	in.lastFrameWall = time.Now()

	if in.cfg.ExpireInterval > 0 && obs.Timestamp.Sub(in.lastExpire) > in.cfg.ExpireInterval {
		in.expire(obs.Timestamp)
	}

	if !obs.SrcMAC.IsUnicastSource() {
		in.stats.Ignored++
		in.metrics.Ignored()
		return
	}

	rec, ok := in.hosts.Get(obs.SrcMAC)
	if !ok {
		if rec = in.track(obs); rec == nil {
			return
		}
	}
	rec.Touch(obs.Timestamp, obs.Length)
	rec.AddIP(obs.SrcIP)

	if obs.RouterAdvert {
		in.checkRouter(obs, rec)
	}
}

// track inserts a host record for a newly seen source address.
func (in *Inspector) track(obs models.Observation) *host.Record {
	tmpl := host.NewTemplate(obs.SrcMAC, obs.Timestamp)
	tmpl.Router = in.routers.Contains(obs.SrcMAC)

	key, err := in.hosts.AddHostRecord(tmpl)
	if err != nil {
		if errors.IsKind(err, errors.KindNoMemory) {
			if obs.Timestamp.Sub(in.lastFull) > in.cfg.FullCooldown {
				in.raise(AlertTableFull, obs.SrcMAC, obs.Timestamp,
					fmt.Sprintf("Host table full (%d hosts), not tracking %s", in.hosts.Len(), obs.SrcMAC))
				in.lastFull = obs.Timestamp
			}
			return nil
		}
		in.log.Error("could not track host", "mac", obs.SrcMAC.String(), logging.Err(err))
		return nil
	}

	rec, _ := in.hosts.Get(key)
	in.stats.NewHosts++
	in.metrics.HostAdded()
	in.raise(AlertNewHost, key, obs.Timestamp, fmt.Sprintf("New host %s (%s)", key, rec.ID))
	return rec
}

// checkRouter handles a router advertisement from obs.SrcMAC.
func (in *Inspector) checkRouter(obs models.Observation, rec *host.Record) {
	if in.routers.Contains(obs.SrcMAC) {
		rec.Router = true
		return
	}
	// Reported once per advertiser until its host entry expires.
	if err := in.rogue.AddMarker(obs.SrcMAC); err != nil {
		return
	}
	in.stats.RogueRouters++
	msg := fmt.Sprintf("Router advertisement from non-whitelisted %s", obs.SrcMAC)
	if obs.SrcIP != nil {
		msg += fmt.Sprintf(" (%s)", obs.SrcIP)
	}
	in.raise(AlertRogueRouter, obs.SrcMAC, obs.Timestamp, msg)
}

func (in *Inspector) raise(t AlertType, src hwaddr.Addr, ts time.Time, msg string) {
	in.alerts.add(Alert{Type: t, Source: src, Message: msg, Timestamp: ts})
	in.metrics.Alert(string(t))
	in.log.Info(msg, "type", string(t), "mac", src.String())
}

// Expire drops hosts idle since before now-HostTimeout and returns how many
// were removed.
func (in *Inspector) Expire(now time.Time) int {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return 0
	}
	return in.expire(now)
}

func (in *Inspector) expire(now time.Time) int {
	in.lastExpire = now
	if in.cfg.HostTimeout <= 0 {
		return 0
	}

	var stale []hwaddr.Addr
	for mac, rec := range in.hosts.All() {
		if now.Sub(rec.LastSeen) > in.cfg.HostTimeout {
			stale = append(stale, mac)
		}
	}

	for _, mac := range stale {
		if err := in.hosts.Remove(mac); err != nil {
			in.log.Error("could not expire host", "mac", mac.String(), logging.Err(err))
			continue
		}
		if in.rogue.Contains(mac) {
			_ = in.rogue.Remove(mac)
		}
		in.stats.Expired++
		in.metrics.HostRemoved("expired")
		in.log.Debug("host expired", "mac", mac.String())
	}
	return len(stale)
}

// Run processes observations until src closes or ctx is done, sweeping idle
// hosts every ExpireInterval even when traffic stops.
func (in *Inspector) Run(ctx context.Context, src <-chan models.Observation) {
	interval := in.cfg.ExpireInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case obs, ok := <-src:
			if !ok {
				return
			}
			in.Process(obs)
		case <-ticker.C:
			in.mu.Lock()
			if !in.closed && !in.lastFrameTS.IsZero() {
				in.expire(in.lastFrameTS.Add(time.Since(in.lastFrameWall)))
			}
			in.mu.Unlock()
		}
	}
}

// Hosts returns detached copies of all tracked hosts ordered by address.
func (in *Inspector) Hosts() []host.Record {
	in.mu.Lock()
	defer in.mu.Unlock()

	out := make([]host.Record, 0, in.hosts.Len())
	for _, rec := range in.hosts.All() {
		out = append(out, rec.Snapshot())
	}
	slices.SortFunc(out, func(a, b host.Record) int {
		return hwaddr.Compare(a.MAC, b.MAC)
	})
	return out
}

// Host returns a copy of the record for mac.
func (in *Inspector) Host(mac hwaddr.Addr) (host.Record, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	rec, ok := in.hosts.Get(mac)
	if !ok {
		return host.Record{}, false
	}
	return rec.Snapshot(), true
}

// Alerts returns up to limit recent alerts, newest last.
func (in *Inspector) Alerts(limit int) []Alert {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.alerts.recent(limit)
}

func (in *Inspector) Stats() Stats {
	in.mu.Lock()
	defer in.mu.Unlock()

	s := in.stats
	s.Tracked = in.hosts.Len()
	s.Routers = in.routers.Len()
	s.ArenaLive = in.hosts.Arena().Live()
	return s
}

// HostCount implements metrics.HostSource.
func (in *Inspector) HostCount() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.hosts.Len()
}

// ArenaCounts implements metrics.HostSource.
func (in *Inspector) ArenaCounts() (allocated, released int64) {
	a := in.hosts.Arena()
	return a.Allocated(), a.Released()
}

// Dump logs every set at debug level.
func (in *Inspector) Dump(ctx context.Context) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return
	}
	in.routers.LogAll(ctx, in.log.Logger, "routers")
	in.rogue.LogAll(ctx, in.log.Logger, "rogue routers")
	in.hosts.LogAll(ctx, in.log.Logger, "hosts")
}

// Close tears down all sets, releasing every host record. Later calls are no-ops.
func (in *Inspector) Close() {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return
	}
	in.closed = true
	in.hosts.Destroy()
	in.rogue.Destroy()
	in.routers.Destroy()
	a := in.hosts.Arena()
	in.log.Debug("host sets destroyed", "allocated", a.Allocated(), "released", a.Released())
}
