package host

import (
	"sync"

	"macwatch/internal/errors"
)

// Arena allocates host records up to a fixed bound and counts every
// allocation and release, so ownership bugs show up as mismatched counters.
type Arena struct {
	mu       sync.Mutex
	limit    int
	next     uint64
	live     map[uint64]*Record
	allocs   int64
	releases int64
	doubles  int64
}

// NewArena creates an arena holding at most limit live records.
// A limit <= 0 means unbounded.
func NewArena(limit int) *Arena {
	return &Arena{
		limit: limit,
		live:  make(map[uint64]*Record),
	}
}

// Alloc returns a new record initialised from a copy of tmpl. The caller
// owns the result until it hands it to a set.
func (a *Arena) Alloc(tmpl *Record) (*Record, error) {
	if tmpl == nil {
		return nil, errors.New(errors.KindInvalidArgument, "host template is nil")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.limit > 0 && len(a.live) >= a.limit {
		return nil, errors.Attr(errors.New(errors.KindNoMemory, "host arena exhausted"), "limit", a.limit)
	}

	rec := tmpl.Snapshot()
	a.next++
	rec.arena = a
	rec.slot = a.next

	a.live[rec.slot] = &rec
	a.allocs++
	return &rec, nil
}

// Release returns r to the arena. Releasing a record that is not live
// (already released, or from another arena) is counted and otherwise ignored.
func (a *Arena) Release(r *Record) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if r == nil || r.arena != a {
		a.doubles++
		return
	}
	if cur, ok := a.live[r.slot]; !ok || cur != r {
		a.doubles++
		return
	}
	delete(a.live, r.slot)
	r.arena = nil
	a.releases++
}

func (a *Arena) Allocated() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocs
}

func (a *Arena) Released() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.releases
}

// DoubleReleases counts Release calls on records that were not live.
func (a *Arena) DoubleReleases() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.doubles
}

// Live is the number of records allocated and not yet released.
func (a *Arena) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

func (a *Arena) Limit() int {
	return a.limit
}
