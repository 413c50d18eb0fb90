// Package barrier simulates the time an assigned emergency takes to
// resolve: every assigned twin travels to the scene, the emergency flips to
// IN_PROGRESS once all have arrived, each twin works its required duration,
// and the emergency flips to COMPLETED once all have returned. Every wait
// here loops on its predicate — the spec's explicit fix for the original's
// raw, spurious-wakeup-vulnerable cnd_wait call.
package barrier

import (
	"strconv"
	"sync"
	"time"

	"dispatchsim/internal/logging"
	"dispatchsim/internal/model"
	"dispatchsim/internal/twinpool"
)

// rendezvous is the shared arrive/return counter for one emergency's
// assigned twins, the Go equivalent of emergency_sync_t.
type rendezvous struct {
	mu           sync.Mutex
	arrived      int
	returned     int
	rescuerCount int
	allArrived   *sync.Cond
	allReturned  *sync.Cond
}

func newRendezvous(rescuerCount int) *rendezvous {
	r := &rendezvous{rescuerCount: rescuerCount}
	r.allArrived = sync.NewCond(&r.mu)
	r.allReturned = sync.NewCond(&r.mu)
	return r
}

// Clock abstracts the passage of simulated time so tests can run the
// barrier without waiting on a real wall clock.
type Clock interface {
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// RealClock is the production Clock, backed by time.Sleep.
var RealClock Clock = realClock{}

// Run simulates an emergency's resolution: one goroutine per assigned
// twin, one for the emergency's own status transitions, joined before Run
// returns. e.Status is mutated to InProgress then Completed as the
// rendezvous phases complete.
func Run(e *model.EmergencyInstance, pool *twinpool.Pool, log *logging.Logger, clock Clock) {
	n := e.RescuerCount
	rdv := newRendezvous(n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := range e.AssignedTwins {
		twin := e.AssignedTwins[i]
		go func(twin model.DigitalTwin) {
			defer wg.Done()
			runTwinTask(twin, e, rdv, pool, log, clock)
		}(twin)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		runEmergencyTask(e, rdv, log)
	}()

	wg.Wait()
}

func runTwinTask(twin model.DigitalTwin, e *model.EmergencyInstance, r *rendezvous, pool *twinpool.Pool, log *logging.Logger, clock Clock) {
	tag := log.Named(twin.Rescuer.Name + " " + strconv.Itoa(twin.ID))

	// Step 1: travel to the scene. "Home" is wherever the twin physically
	// was before traveling, not the emergency's own coordinates — the
	// original source computed this from the emergency's position, which
	// would strand every twin at the last incident it served; captured
	// here from the twin's pre-travel snapshot instead.
	homeX, homeY := twin.X, twin.Y
	travelTime := twin.TravelTime(e.X, e.Y)
	clock.Sleep(time.Duration(travelTime) * time.Second)

	pool.WithLock(twin.ID, func(t *model.DigitalTwin) {
		t.X, t.Y = e.X, e.Y
		t.Status = model.OnScene
	})
	tag.Event("RESCUER_STATUS", "status changed to ON_SCENE for emergency %d", e.ID)

	r.mu.Lock()
	r.arrived++
	if r.arrived == r.rescuerCount {
		r.allArrived.Broadcast()
	} else {
		for r.arrived < r.rescuerCount {
			r.allArrived.Wait()
		}
	}
	r.mu.Unlock()

	// Step 2: work on scene for this twin's rescuer-type duration.
	manageTime := 0
	for _, req := range e.Type.Requirements {
		if req.Type.Name == twin.Rescuer.Name {
			manageTime = req.TimeToManageSec
			break
		}
	}
	clock.Sleep(time.Duration(manageTime) * time.Second)

	pool.WithLock(twin.ID, func(t *model.DigitalTwin) {
		t.Status = model.ReturningToBase
	})
	tag.Event("RESCUER_STATUS", "status changed to RETURNING_TO_BASE for emergency %d", e.ID)

	r.mu.Lock()
	r.returned++
	if r.returned == r.rescuerCount {
		r.allReturned.Broadcast()
	}
	r.mu.Unlock()

	// Step 3: travel back home.
	clock.Sleep(time.Duration(travelTime) * time.Second)
	pool.WithLock(twin.ID, func(t *model.DigitalTwin) {
		t.X, t.Y = homeX, homeY
		t.Status = model.Idle
	})
	tag.Event("RESCUER_STATUS", "status changed to IDLE after completing emergency %d", e.ID)
}

func runEmergencyTask(e *model.EmergencyInstance, r *rendezvous, log *logging.Logger) {
	tag := log.Named(e.LogID())

	r.mu.Lock()
	for r.arrived < r.rescuerCount {
		r.allArrived.Wait()
	}
	e.Status = model.InProgress
	tag.Event("EMERGENCY_STATUS", "status changed to IN_PROGRESS")
	r.mu.Unlock()

	r.mu.Lock()
	for r.returned < r.rescuerCount {
		r.allReturned.Wait()
	}
	e.Status = model.Completed
	e.RescuerCount = 0
	e.AssignedTwins = nil
	tag.Event("EMERGENCY_STATUS", "status changed to COMPLETED")
	r.mu.Unlock()
}
