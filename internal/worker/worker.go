// Package worker implements the per-emergency state machine from §4.2:
// reachability and deadline gating, intent registration/refresh,
// arbitration, assignment attempts, and handoff into the simulation
// barrier. One Run call is the full lifetime of one emergency instance,
// meant to be launched as a detached goroutine per incoming request.
package worker

import (
	"time"

	"github.com/cenkalti/backoff/v4"

	"dispatchsim/internal/assignment"
	"dispatchsim/internal/barrier"
	"dispatchsim/internal/intent"
	"dispatchsim/internal/logging"
	"dispatchsim/internal/model"
	"dispatchsim/internal/twinpool"
)

// IntentRefreshInterval is the number of retry iterations between intent
// refreshes — 200 retries at RetryDelay each is ~1s, matching
// INTENT_REFRESH_INTERVAL in the original.
const IntentRefreshInterval = 200

// RetryDelay is the backoff between a blocked arbitration or failed
// assignment attempt and the next retry.
const RetryDelay = 5 * time.Millisecond

// Run drives e through its full lifecycle against the shared twin pool and
// intent table, logging every transition, until it is resolved
// (assigned-then-simulated) or dropped (unreachable or past deadline).
func Run(e *model.EmergencyInstance, pool *twinpool.Pool, itable *intent.Table, log *logging.Logger, clock barrier.Clock) {
	tag := log.Named(e.LogID())

	firstTime := true
	refreshCounter := 0
	retry := backoff.NewConstantBackOff(RetryDelay)

	for {
		if !checkReachability(e, pool, tag) {
			return
		}
		if !checkDeadline(e, tag) {
			itable.Unregister(e.ID)
			return
		}

		if firstTime || refreshCounter >= IntentRefreshInterval {
			it := intent.CreateFromEmergency(e, pool)
			if firstTime {
				if !itable.Register(it) {
					e.Status = model.Canceled
					tag.Event("EMERGENCY_STATUS", "aborted: intent table full or duplicate id %d", e.ID)
					return
				}
			} else {
				itable.Update(it)
			}
			firstTime = false
			refreshCounter = 0
		}

		if !itable.MayProceed(e.ID) {
			time.Sleep(retry.NextBackOff())
			refreshCounter++
			continue
		}

		if assignment.Attempt(e, pool, log) {
			itable.Unregister(e.ID)
			barrier.Run(e, pool, log, clock)
			return
		}

		time.Sleep(retry.NextBackOff())
		refreshCounter++
	}
}

// checkReachability marks e TIMEOUT and returns false if, for any
// requirement, fewer twins of the right type can physically reach the
// scene before the deadline than are required — independent of current
// IDLE status, mirroring check_reachability in the original.
func checkReachability(e *model.EmergencyInstance, pool *twinpool.Pool, tag *logging.Logger) bool {
	deadline := e.Type.Deadline(e.Submitted)
	now := time.Now()

	all := pool.All()
	for _, req := range e.Type.Requirements {
		reachable := 0
		for _, twin := range all {
			if twin.Rescuer.Name != req.Type.Name {
				continue
			}
			tt := twin.TravelTime(e.X, e.Y)
			if !now.Add(time.Duration(tt) * time.Second).After(deadline) {
				reachable++
				if reachable >= req.RequiredCount {
					break
				}
			}
		}
		if reachable < req.RequiredCount {
			e.Status = model.Timeout
			tag.Event("EMERGENCY_STATUS", "timeout due to distance, requested %q: %d required, %d reachable in time", req.Type.Name, req.RequiredCount, reachable)
			return false
		}
	}
	return true
}

// checkDeadline marks e TIMEOUT and returns false once the current time
// has passed the priority-derived deadline.
func checkDeadline(e *model.EmergencyInstance, tag *logging.Logger) bool {
	deadline := e.Type.Deadline(e.Submitted)
	if time.Now().After(deadline) {
		e.Status = model.Timeout
		tag.Event("EMERGENCY_STATUS", "timeout due to exhaustion, maximum available time elapsed")
		return false
	}
	return true
}
