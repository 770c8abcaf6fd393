package macset

import (
	"macwatch/internal/errors"
	"macwatch/internal/host"
	"macwatch/internal/hwaddr"
)

// HostSet is a Set owning host records drawn from an arena. Records leaving
// the set go back to the arena.
type HostSet struct {
	*Set[*host.Record]
	arena *host.Arena
}

// NewHostSet creates a host-owning set backed by arena.
func NewHostSet(capacity int, arena *host.Arena) (*HostSet, error) {
	if arena == nil {
		return nil, errors.New(errors.KindInvalidArgument, "host arena is nil")
	}
	s, err := New(capacity, arena.Release)
	if err != nil {
		return nil, err
	}
	return &HostSet{Set: s, arena: arena}, nil
}

// AddHostRecord allocates a copy of tmpl and stores it under tmpl.MAC. The
// set owns the copy; tmpl stays with the caller.
func (s *HostSet) AddHostRecord(tmpl *host.Record) (hwaddr.Addr, error) {
	if tmpl == nil {
		return hwaddr.Addr{}, errors.New(errors.KindInvalidArgument, "host template is nil")
	}
	if err := s.checkLive(); err != nil {
		return hwaddr.Addr{}, err
	}
	rec, err := s.arena.Alloc(tmpl)
	if err != nil {
		return hwaddr.Addr{}, errors.Attr(err, "mac", tmpl.MAC.String())
	}
	if err := s.AddPayload(rec.MAC, rec); err != nil {
		s.arena.Release(rec)
		return hwaddr.Addr{}, err
	}
	return rec.MAC, nil
}

func (s *HostSet) Arena() *host.Arena {
	return s.arena
}
