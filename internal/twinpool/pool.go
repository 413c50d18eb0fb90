// Package twinpool holds the shared arena of digital twins and the
// per-twin exclusion lock array the original kept as a flat
// mtx_t twin_locks[MAX_TWINS]. Candidate scans read twin state through a
// brief RLock instead of the original's unsynchronized read, since nothing
// in the source actually requires the race — every write already happens
// under the same twin's lock.
package twinpool

import (
	"sort"
	"sync"

	"dispatchsim/internal/model"
)

type slot struct {
	mu   sync.RWMutex
	twin *model.DigitalTwin
}

// Pool is the dense, 1-based-ID collection of every digital twin in the
// simulation, each guarded by its own lock.
type Pool struct {
	slots map[int]*slot
}

// New builds a Pool from the twins loaded by internal/config.
func New(twins []*model.DigitalTwin) *Pool {
	p := &Pool{slots: make(map[int]*slot, len(twins))}
	for _, t := range twins {
		p.slots[t.ID] = &slot{twin: t}
	}
	return p
}

func (p *Pool) slotFor(id int) *slot {
	s, ok := p.slots[id]
	if !ok {
		panic("twinpool: unknown twin id")
	}
	return s
}

// Snapshot returns a consistent value copy of twin id's current state.
func (p *Pool) Snapshot(id int) model.DigitalTwin {
	s := p.slotFor(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.twin
}

// All returns a snapshot of every twin, in ID order — the candidate pool
// check_reachability/create_intent_from_emergency/assignment scans iterate.
func (p *Pool) All() []model.DigitalTwin {
	ids := make([]int, 0, len(p.slots))
	for id := range p.slots {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]model.DigitalTwin, 0, len(ids))
	for _, id := range ids {
		out = append(out, p.Snapshot(id))
	}
	return out
}

// Occupancy reports how many twins are IDLE vs. currently committed to an
// emergency, for the admin status surface.
func (p *Pool) Occupancy() (idle, busy int) {
	for _, t := range p.All() {
		if t.Status == model.Idle {
			idle++
		} else {
			busy++
		}
	}
	return idle, busy
}

// TryLock attempts to acquire twin id's exclusion lock without blocking —
// the Go analogue of mtx_trylock(&twin_locks[id-1]).
func (p *Pool) TryLock(id int) bool {
	return p.slotFor(id).mu.TryLock()
}

// Unlock releases twin id's exclusion lock.
func (p *Pool) Unlock(id int) {
	p.slotFor(id).mu.Unlock()
}

// MutateLocked runs fn against the live twin for id. The caller MUST hold
// id's lock (via TryLock) before calling this.
func (p *Pool) MutateLocked(id int, fn func(t *model.DigitalTwin)) {
	fn(p.slotFor(id).twin)
}

// WithLock acquires id's lock, runs fn, and releases it — used by the
// twin simulation task for each of its own state transitions, where no
// rollback/ordering concern applies (the twin is exclusively owned for the
// whole EN_ROUTE_TO_SCENE..IDLE lifecycle).
func (p *Pool) WithLock(id int, fn func(t *model.DigitalTwin)) {
	s := p.slotFor(id)
	s.mu.Lock()
	fn(s.twin)
	s.mu.Unlock()
}
