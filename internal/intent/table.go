// Package intent implements the intent table from §4.4: a bounded registry
// of in-flight emergencies' candidate-twin declarations, arbitrated by
// priority and a same-priority FIFO window. The table is guarded by a
// single coarse mutex — deliberately, per the original design rationale
// that the table's size (at most one entry per live emergency) doesn't
// justify finer-grained indexing.
package intent

import (
	"sync"
	"time"

	"github.com/hashicorp/go-set/v3"

	"dispatchsim/internal/model"
	"dispatchsim/internal/twinpool"
)

// MaxIntents bounds the table's size, matching §6's "max intents = 128".
const MaxIntents = 128

// Table is the intent registry every worker refreshes and consults before
// attempting an assignment.
type Table struct {
	mu    sync.Mutex
	items map[int]*model.Intent
}

func New() *Table {
	return &Table{items: make(map[int]*model.Intent)}
}

// Register adds a new intent, replacing none — callers must not register
// twice for the same emergency id without an intervening Unregister. It
// fails, per §4.4, if the id is already present or the table is already at
// MaxIntents capacity; on failure the table is left untouched.
func (t *Table) Register(it *model.Intent) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[it.EmergencyID]; ok {
		return false
	}
	if len(t.items) >= MaxIntents {
		return false
	}
	t.items[it.EmergencyID] = it
	return true
}

// Update replaces the candidate set of an existing intent in place,
// refreshing it as twin availability changes over the emergency's
// lifetime. The timestamp carried on `it` must be the ORIGINAL submission
// time, not "now" — callers get this for free by deriving `it` from
// CreateFromEmergency, which never touches the wall clock for Timestamp.
func (t *Table) Update(it *model.Intent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[it.EmergencyID]; ok {
		t.items[it.EmergencyID] = it
	}
}

// Unregister removes the intent for emergencyID, if present.
func (t *Table) Unregister(emergencyID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.items, emergencyID)
}

// MayProceed reports whether the emergency's intent is clear to attempt
// assignment: no conflicting intent (sharing a candidate twin) outranks it.
// An intent is blocked by a conflicting other when the other has strictly
// higher priority, or equal priority and is both older and still within the
// FIFO precedence window — ties outside the window, and any case where the
// candidate's own priority is higher, are allowed to proceed, exactly as
// can_proceed in the original leaves no explicit branch for that case.
func (t *Table) MayProceed(emergencyID int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	candidate, ok := t.items[emergencyID]
	if !ok {
		return false
	}
	for otherID, other := range t.items {
		if otherID == candidate.EmergencyID {
			continue
		}
		if !model.Conflicts(candidate, other) {
			continue
		}
		if other.Priority > candidate.Priority {
			return false
		}
		if other.Priority == candidate.Priority &&
			other.Timestamp.Before(candidate.Timestamp) &&
			candidate.Timestamp.Sub(other.Timestamp) < model.WindowPeriod {
			return false
		}
	}
	return true
}

// Size reports how many intents are currently registered, for the admin
// status surface.
func (t *Table) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// CreateFromEmergency builds the intent for an emergency instance: every
// twin whose rescuer type is requested by ANY of the emergency's
// requirements, reachable before the priority deadline computed from "now"
// — regardless of the twin's current status. This deliberately does NOT
// filter by IDLE, unlike assignment's candidate selection: an intent
// declares everything that *could* eventually serve this emergency, so
// arbitration accounts for twins that are merely busy right now, matching
// create_intent_from_emergency in the original source.
func CreateFromEmergency(e *model.EmergencyInstance, pool *twinpool.Pool) *model.Intent {
	requested := make(map[string]bool, len(e.Type.Requirements))
	for _, r := range e.Type.Requirements {
		requested[r.Type.Name] = true
	}

	deadline := e.Type.Deadline(e.Submitted)
	now := time.Now()

	candidates := set.New[int](0)
	for _, twin := range pool.All() {
		if !requested[twin.Rescuer.Name] {
			continue
		}
		if now.Add(time.Duration(twin.TravelTime(e.X, e.Y)) * time.Second).After(deadline) {
			continue
		}
		candidates.Insert(twin.ID)
	}

	return &model.Intent{
		EmergencyID:      e.ID,
		Priority:         e.Type.Priority,
		Timestamp:        e.Submitted,
		CandidateTwinIDs: candidates,
	}
}
