// Package macset implements sets keyed by hardware address whose entries are
// either bare presence markers or payloads owned by the set.
//
// A Set is not safe for concurrent use; callers serialise access.
package macset

import (
	"iter"
	"reflect"

	"macwatch/internal/errors"
	"macwatch/internal/hwaddr"
)

// DefaultCapacity is used when New is given a zero capacity hint.
const DefaultCapacity = 20

type entryKind uint8

const (
	kindMarker entryKind = iota + 1
	kindOwned
)

// entry is the tagged value stored per key. Only kindOwned entries carry a
// payload and only they are ever released.
type entry[T any] struct {
	kind    entryKind
	payload T
}

// Set maps unique addresses to markers or owned payloads of type T.
type Set[T any] struct {
	entries map[hwaddr.Addr]entry[T]
	release func(T)
}

// New creates a set sized for capacity entries. release is called exactly
// once for every owned payload that leaves the set; it may be nil for sets
// that only ever hold markers.
func New[T any](capacity int, release func(T)) (*Set[T], error) {
	if capacity < 0 {
		return nil, errors.Errorf(errors.KindInvalidArgument, "negative capacity %d", capacity)
	}
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	return &Set[T]{
		entries: make(map[hwaddr.Addr]entry[T], capacity),
		release: release,
	}, nil
}

// Destroy releases every owned payload and empties the set. The set must not
// be mutated afterwards; a second Destroy does nothing.
func (s *Set[T]) Destroy() {
	if s.entries == nil {
		return
	}
	entries := s.entries
	s.entries = nil
	for _, e := range entries {
		s.dispatch(e)
	}
}

// dispatch releases e's payload if, and only if, the set owns one.
func (s *Set[T]) dispatch(e entry[T]) {
	if e.kind != kindOwned || s.release == nil {
		return
	}
	s.release(e.payload)
}

func (s *Set[T]) checkLive() error {
	if s.entries == nil {
		return errors.New(errors.KindInvalidArgument, "mac set already destroyed")
	}
	return nil
}

// AddMarker inserts k without a payload. It never overwrites.
func (s *Set[T]) AddMarker(k hwaddr.Addr) error {
	if err := s.checkLive(); err != nil {
		return err
	}
	if _, ok := s.entries[k]; ok {
		return errors.Attr(errors.New(errors.KindDuplicateKey, "address already in set"), "mac", k.String())
	}
	s.entries[k] = entry[T]{kind: kindMarker}
	return nil
}

// AddMarkerString parses text and inserts it as a marker.
func (s *Set[T]) AddMarkerString(text string) error {
	k, err := hwaddr.Parse(text)
	if err != nil {
		return err
	}
	return s.AddMarker(k)
}

// AddPayload stores p under k and takes ownership of it; the caller must not
// release p itself. An existing entry is replaced and its payload, if owned,
// is released. Storing the payload k already owns again is a no-op. Adding
// the same payload under a second key, or to a second set, breaks single
// ownership and is the caller's bug.
func (s *Set[T]) AddPayload(k hwaddr.Addr, p T) error {
	if err := s.checkLive(); err != nil {
		return err
	}
	old, had := s.entries[k]
	if had && old.kind == kindOwned && samePayload(old.payload, p) {
		return nil
	}
	s.entries[k] = entry[T]{kind: kindOwned, payload: p}
	if had {
		s.dispatch(old)
	}
	return nil
}

// samePayload reports whether a and b are the same comparable value, e.g.
// the same pointer. Non-comparable payloads are never considered the same.
func samePayload[T any](a, b T) bool {
	va, vb := reflect.ValueOf(any(a)), reflect.ValueOf(any(b))
	if !va.IsValid() || !vb.IsValid() || va.Type() != vb.Type() {
		return false
	}
	return va.Comparable() && va.Equal(vb)
}

// Contains reports whether k is present, marker or not.
func (s *Set[T]) Contains(k hwaddr.Addr) bool {
	_, ok := s.entries[k]
	return ok
}

// Get returns the payload stored under k. ok is false both when k is absent
// and when k is a marker; use Contains or IsMarker to tell them apart.
func (s *Set[T]) Get(k hwaddr.Addr) (p T, ok bool) {
	e, found := s.entries[k]
	if !found || e.kind != kindOwned {
		return p, false
	}
	return e.payload, true
}

// IsMarker reports whether k is present without a payload.
func (s *Set[T]) IsMarker(k hwaddr.Addr) bool {
	e, ok := s.entries[k]
	return ok && e.kind == kindMarker
}

// Remove deletes k, releasing its payload if owned.
func (s *Set[T]) Remove(k hwaddr.Addr) error {
	if err := s.checkLive(); err != nil {
		return err
	}
	e, ok := s.entries[k]
	if !ok {
		return errors.Attr(errors.New(errors.KindNotFound, "address not in set"), "mac", k.String())
	}
	delete(s.entries, k)
	s.dispatch(e)
	return nil
}

func (s *Set[T]) Len() int {
	return len(s.entries)
}

func (s *Set[T]) IsEmpty() bool {
	return s.Len() == 0
}

// Keys yields every key in unspecified order. Each call starts a fresh walk.
// The set must not be mutated while a walk is in progress.
func (s *Set[T]) Keys() iter.Seq[hwaddr.Addr] {
	return func(yield func(hwaddr.Addr) bool) {
		for k := range s.entries {
			if !yield(k) {
				return
			}
		}
	}
}

// All yields the owned entries; markers are skipped.
func (s *Set[T]) All() iter.Seq2[hwaddr.Addr, T] {
	return func(yield func(hwaddr.Addr, T) bool) {
		for k, e := range s.entries {
			if e.kind != kindOwned {
				continue
			}
			if !yield(k, e.payload) {
				return
			}
		}
	}
}
