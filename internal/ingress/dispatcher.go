// Package ingress implements §4.1: polling the bus for emergency frames,
// parsing and validating them, and launching one detached worker goroutine
// per accepted record. The monotonic emergency ID is assigned only once a
// frame is fully parsed and validated, per §4.1's "increments per accepted
// request" — unlike the original C main loop, which burned an ID on every
// successful receive even for malformed records.
package ingress

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-uuid"

	"dispatchsim/internal/barrier"
	"dispatchsim/internal/bus"
	"dispatchsim/internal/config"
	"dispatchsim/internal/intent"
	"dispatchsim/internal/logging"
	"dispatchsim/internal/model"
	"dispatchsim/internal/twinpool"
	"dispatchsim/internal/worker"
)

// RetryDelay is the idle-poll backoff used when the bus has nothing
// pending — the Go analogue of main.c's EAGAIN/thrd_sleep(5ms) branch.
const RetryDelay = 5 * time.Millisecond

// Dispatcher owns the ingest loop and the registry of in-flight workers it
// spawns, used both for graceful shutdown and for the admin status
// surface.
type Dispatcher struct {
	bus    bus.Bus
	pool   *twinpool.Pool
	itable *intent.Table
	types  []*model.EmergencyType
	grid   config.Grid
	log    *logging.Logger
	clock  barrier.Clock

	mu     sync.Mutex
	nextID int

	wg sync.WaitGroup

	active sync.Map // int emergency id -> time.Time started, for status reporting
}

// New builds a Dispatcher. clock may be barrier.RealClock in production or
// a fake in tests.
func New(b bus.Bus, pool *twinpool.Pool, itable *intent.Table, types []*model.EmergencyType, grid config.Grid, log *logging.Logger, clock barrier.Clock) *Dispatcher {
	return &Dispatcher{
		bus:    b,
		pool:   pool,
		itable: itable,
		types:  types,
		grid:   grid,
		log:    log.Named("ingress"),
		clock:  clock,
		nextID: 1,
	}
}

// Run polls the bus until stop is closed, then waits for every in-flight
// worker to finish before returning — the graceful-drain behavior the
// original's detach-and-abandon main loop never provided.
func (d *Dispatcher) Run(stop <-chan struct{}) {
	retry := backoff.NewConstantBackOff(RetryDelay)
	for {
		select {
		case <-stop:
			d.wg.Wait()
			return
		default:
		}

		raw, ok := d.bus.Receive()
		if !ok {
			time.Sleep(retry.NextBackOff())
			continue
		}
		d.handle(raw)
	}
}

func (d *Dispatcher) handle(raw string) {
	frame, err := bus.Parse(raw)
	if err != nil {
		d.log.Warn("PARSING_ERROR", "%v", err)
		return
	}

	etype := d.findType(frame.Type)
	if etype == nil {
		d.log.Warn("VALIDATION_ERROR", "unknown emergency type: %s", frame.Type)
		return
	}
	// Bounds kept exactly as the original env validation: x against the
	// grid's height, y against its width.
	if frame.X < 0 || frame.X > d.grid.Height || frame.Y < 0 || frame.Y > d.grid.Width {
		d.log.Warn("VALIDATION_ERROR", "coordinates out of bounds: (%d,%d)", frame.X, frame.Y)
		return
	}
	if frame.Submitted.After(time.Now()) {
		d.log.Warn("VALIDATION_ERROR", "future timestamp rejected: %d", frame.Submitted.Unix())
		return
	}

	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.mu.Unlock()

	corrID, _ := uuid.GenerateUUID()
	inst := &model.EmergencyInstance{
		ID:        id,
		Type:      etype.Clone(),
		X:         frame.X,
		Y:         frame.Y,
		Submitted: frame.Submitted,
		Status:    model.Waiting,
	}
	d.log.Event("MESSAGE_QUEUE", "accepted emergency %d type=%s correlation=%s", id, etype.Name, corrID)

	d.active.Store(id, time.Now())
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.active.Delete(id)
		worker.Run(inst, d.pool, d.itable, d.log, d.clock)
	}()
}

func (d *Dispatcher) findType(name string) *model.EmergencyType {
	for _, t := range d.types {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// ActiveCount reports how many emergency workers are currently in flight,
// for the admin status surface.
func (d *Dispatcher) ActiveCount() int {
	n := 0
	d.active.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
