// Package host holds the per-MAC host record and the bounded arena that
// hands records out and takes them back.
package host

import (
	"net"
	"slices"
	"time"

	"github.com/google/uuid"

	"macwatch/internal/hwaddr"
)

// MaxIPs caps how many distinct addresses a record remembers.
const MaxIPs = 8

// Record describes one link-layer host seen on the wire.
type Record struct {
	ID        uuid.UUID
	MAC       hwaddr.Addr
	IPs       []net.IP
	FirstSeen time.Time
	LastSeen  time.Time
	Packets   int64
	Bytes     int64
	Router    bool

	// set by the arena while the record is live
	arena *Arena
	slot  uint64
}

// NewTemplate builds a template for a host first seen at ts.
func NewTemplate(mac hwaddr.Addr, ts time.Time) *Record {
	return &Record{
		ID:        uuid.New(),
		MAC:       mac,
		FirstSeen: ts,
		LastSeen:  ts,
	}
}

// Touch accounts one frame of length bytes seen at ts.
func (r *Record) Touch(ts time.Time, length int) {
	if ts.After(r.LastSeen) {
		r.LastSeen = ts
	}
	r.Packets++
	r.Bytes += int64(length)
}

// AddIP remembers ip if it is new, keeping at most MaxIPs entries.
func (r *Record) AddIP(ip net.IP) bool {
	if ip == nil || ip.IsUnspecified() {
		return false
	}
	if slices.ContainsFunc(r.IPs, ip.Equal) {
		return false
	}
	if len(r.IPs) >= MaxIPs {
		r.IPs = r.IPs[1:]
	}
	r.IPs = append(r.IPs, slices.Clone(ip))
	return true
}

// Snapshot returns a detached copy safe to hand to other goroutines.
func (r *Record) Snapshot() Record {
	out := *r
	out.arena = nil
	out.slot = 0
	out.IPs = make([]net.IP, len(r.IPs))
	for i, ip := range r.IPs {
		out.IPs[i] = slices.Clone(ip)
	}
	return out
}

// IPStrings renders the known addresses.
func (r *Record) IPStrings() []string {
	out := make([]string, len(r.IPs))
	for i, ip := range r.IPs {
		out[i] = ip.String()
	}
	return out
}
