// Package assignment implements §4.3: selecting IDLE, reachable twins for
// an emergency's requirements, acquiring their exclusion locks in a
// deadlock-free global order, and committing the assignment atomically.
package assignment

import (
	"fmt"
	"sort"
	"time"

	"dispatchsim/internal/logging"
	"dispatchsim/internal/model"
	"dispatchsim/internal/twinpool"
)

type candidate struct {
	twin       model.DigitalTwin
	travelTime int
}

// Attempt tries to assign enough IDLE, reachable twins to satisfy every
// requirement of e. It returns ok=false (without mutating any twin) when
// any single requirement lacks enough currently-IDLE, reachable candidates,
// or when the lock-acquisition phase loses a race to another worker.
func Attempt(e *model.EmergencyInstance, pool *twinpool.Pool, log *logging.Logger) (ok bool) {
	deadline := e.Type.Deadline(e.Submitted)
	now := time.Now()

	// Step 1: per-requirement candidate selection, sorted by travel time.
	var selected []model.DigitalTwin
	all := pool.All()
	for _, req := range e.Type.Requirements {
		var cands []candidate
		for _, twin := range all {
			if twin.Status != model.Idle {
				continue
			}
			if twin.Rescuer.Name != req.Type.Name {
				continue
			}
			tt := twin.TravelTime(e.X, e.Y)
			if now.Add(time.Duration(tt)*time.Second).After(deadline) {
				continue
			}
			cands = append(cands, candidate{twin: twin, travelTime: tt})
		}
		sort.Slice(cands, func(i, j int) bool { return cands[i].travelTime < cands[j].travelTime })
		if len(cands) < req.RequiredCount {
			return false
		}
		for i := 0; i < req.RequiredCount; i++ {
			selected = append(selected, cands[i].twin)
		}
	}

	// Step 2: sort by twin ID ascending — the single global lock order
	// that makes concurrent assignment attempts deadlock-free.
	sort.Slice(selected, func(i, j int) bool { return selected[i].ID < selected[j].ID })

	// Step 3: try-lock every selected twin in order; on first failure,
	// release everything already held and give up for this attempt.
	locked := make([]int, 0, len(selected))
	for _, twin := range selected {
		if !pool.TryLock(twin.ID) {
			for _, id := range locked {
				pool.Unlock(id)
			}
			return false
		}
		locked = append(locked, twin.ID)
	}

	// Re-check IDLE now that locks are held: another worker may have
	// claimed a twin between the scan and the trylock.
	for _, id := range locked {
		var status model.TwinStatus
		pool.MutateLocked(id, func(t *model.DigitalTwin) { status = t.Status })
		if status != model.Idle {
			for _, lockedID := range locked {
				pool.Unlock(lockedID)
			}
			return false
		}
	}

	// Step 4: commit. Flip status under lock, collect a deep-copy
	// snapshot, release per-twin (inside the same loop, before the
	// grouped summary line — matching assign_rescuers_to_emergency's
	// Step 5), grouping by rescuer type name for the summary log.
	e.RescuerCount = len(locked)
	e.Status = model.Assigned
	e.AssignedTwins = make([]model.DigitalTwin, 0, len(locked))

	type group struct {
		typeName string
		ids      []int
	}
	var groups []group
	groupIdx := make(map[string]int)

	for _, id := range locked {
		var snap model.DigitalTwin
		pool.MutateLocked(id, func(t *model.DigitalTwin) {
			t.Status = model.EnRouteToScene
			snap = t.Snapshot()
		})
		e.AssignedTwins = append(e.AssignedTwins, snap)

		log.Named(fmt.Sprintf("%s %d", snap.Rescuer.Name, snap.ID)).Event(
			"RESCUER_STATUS", "Assigned to emergency %d, status EN_ROUTE_TO_SCENE", e.ID)

		if idx, ok := groupIdx[snap.Rescuer.Name]; ok {
			groups[idx].ids = append(groups[idx].ids, snap.ID)
		} else {
			groupIdx[snap.Rescuer.Name] = len(groups)
			groups = append(groups, group{typeName: snap.Rescuer.Name, ids: []int{snap.ID}})
		}

		pool.Unlock(id)
	}

	log.Named(e.LogID()).Event("EMERGENCY_STATUS", "status changed to ASSIGNED")

	summary := ""
	for _, g := range groups {
		summary += "{" + g.typeName + " "
		for i, id := range g.ids {
			if i > 0 {
				summary += ","
			}
			summary += fmt.Sprintf("%d", id)
		}
		summary += "}"
	}
	log.Named(e.LogID()).Event("ASSIGNMENT", "%s", summary)

	return true
}
