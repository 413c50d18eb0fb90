package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dispatchsim/internal/intent"
	"dispatchsim/internal/logging"
	"dispatchsim/internal/model"
	"dispatchsim/internal/twinpool"
)

type instantClock struct{}

func (instantClock) Sleep(time.Duration) {}

func buildWorkerScenario(twinStatus model.TwinStatus, priority int16) (*model.EmergencyInstance, *twinpool.Pool) {
	ambulance := &model.RescuerType{Name: "ambulance", Speed: 10}
	twins := []*model.DigitalTwin{
		{ID: 1, X: 0, Y: 0, Rescuer: ambulance, Status: twinStatus},
	}
	pool := twinpool.New(twins)

	etype := &model.EmergencyType{
		Name:     "cardiac_arrest",
		Priority: priority,
		Requirements: []model.RescuerRequirement{
			{Type: ambulance, RequiredCount: 1, TimeToManageSec: 1},
		},
	}
	e := &model.EmergencyInstance{
		ID: 1, Type: etype, X: 1, Y: 1, Submitted: time.Now(), Status: model.Waiting,
	}
	return e, pool
}

func TestRun_AssignsAndCompletesWhenTwinIsIdle(t *testing.T) {
	e, pool := buildWorkerScenario(model.Idle, 1)
	itable := intent.New()

	Run(e, pool, itable, logging.Discard(), instantClock{})

	require.Equal(t, model.Completed, e.Status)
	require.Equal(t, 0, itable.Size(), "the intent must be unregistered once assignment succeeds")
	require.Equal(t, model.Idle, pool.Snapshot(1).Status)
}

func TestRun_TimesOutWhenNoTwinCanEverReach(t *testing.T) {
	e, pool := buildWorkerScenario(model.Idle, 2) // 10s deadline
	e.X, e.Y = 1_000_000, 1_000_000               // unreachable in time

	itable := intent.New()
	Run(e, pool, itable, logging.Discard(), instantClock{})

	require.Equal(t, model.Timeout, e.Status)
	require.Equal(t, 0, itable.Size())
}

func TestRun_AbortsWhenIntentTableIsFull(t *testing.T) {
	e, pool := buildWorkerScenario(model.Idle, 1)
	itable := intent.New()

	now := time.Now()
	for i := 0; i < intent.MaxIntents; i++ {
		require.True(t, itable.Register(&model.Intent{EmergencyID: i + 1000, Priority: 1, Timestamp: now}))
	}

	Run(e, pool, itable, logging.Discard(), instantClock{})

	require.Equal(t, model.Canceled, e.Status, "a full intent table must abort the workflow rather than block forever")
	require.Equal(t, intent.MaxIntents, itable.Size(), "the failed registration must not have mutated the table")
}

func TestRun_RetriesUntilTwinBecomesIdle(t *testing.T) {
	e, pool := buildWorkerScenario(model.OnScene, 0) // priority 0: generous deadline, busy twin
	itable := intent.New()

	done := make(chan struct{})
	go func() {
		Run(e, pool, itable, logging.Discard(), instantClock{})
		close(done)
	}()

	// Free the twin shortly after the worker starts retrying.
	time.Sleep(20 * time.Millisecond)
	pool.WithLock(1, func(t *model.DigitalTwin) { t.Status = model.Idle })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never completed after the twin became idle")
	}
	require.Equal(t, model.Completed, e.Status)
}
