package barrier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dispatchsim/internal/logging"
	"dispatchsim/internal/model"
	"dispatchsim/internal/twinpool"
)

// instantClock never actually sleeps, so barrier tests run at full speed.
type instantClock struct{}

func (instantClock) Sleep(time.Duration) {}

func twinsAt(n int, status model.TwinStatus) ([]*model.DigitalTwin, *model.RescuerType) {
	rt := &model.RescuerType{Name: "ambulance", Speed: 5}
	var twins []*model.DigitalTwin
	for i := 0; i < n; i++ {
		twins = append(twins, &model.DigitalTwin{ID: i + 1, X: 0, Y: 0, Rescuer: rt, Status: status})
	}
	return twins, rt
}

func TestRun_SingleTwin_CompletesAndReturnsHome(t *testing.T) {
	twins, rt := twinsAt(1, model.EnRouteToScene)
	pool := twinpool.New(twins)

	etype := &model.EmergencyType{
		Name:     "cardiac_arrest",
		Priority: 1,
		Requirements: []model.RescuerRequirement{
			{Type: rt, RequiredCount: 1, TimeToManageSec: 1},
		},
	}
	e := &model.EmergencyInstance{
		ID: 1, Type: etype, X: 10, Y: 10, Submitted: time.Now(),
		Status:        model.Assigned,
		RescuerCount:  1,
		AssignedTwins: []model.DigitalTwin{pool.Snapshot(1)},
	}

	Run(e, pool, logging.Discard(), instantClock{})

	require.Equal(t, model.Completed, e.Status)
	require.Equal(t, 0, e.RescuerCount)
	require.Nil(t, e.AssignedTwins)

	final := pool.Snapshot(1)
	require.Equal(t, model.Idle, final.Status)
	require.Equal(t, 0, final.X)
	require.Equal(t, 0, final.Y, "twin must return to its own pre-travel position, not the emergency's")
}

func TestRun_MultipleTwins_CompleteAndAllReturnIdle(t *testing.T) {
	twins, rt := twinsAt(3, model.EnRouteToScene)
	pool := twinpool.New(twins)

	etype := &model.EmergencyType{
		Name:     "structure_fire",
		Priority: 1,
		Requirements: []model.RescuerRequirement{
			{Type: rt, RequiredCount: 3, TimeToManageSec: 1},
		},
	}
	e := &model.EmergencyInstance{
		ID: 2, Type: etype, X: 5, Y: 5, Submitted: time.Now(),
		Status:       model.Assigned,
		RescuerCount: 3,
	}
	for _, tw := range pool.All() {
		e.AssignedTwins = append(e.AssignedTwins, tw)
	}

	Run(e, pool, logging.Discard(), instantClock{})

	require.Equal(t, model.Completed, e.Status)
	for _, tw := range pool.All() {
		require.Equal(t, model.Idle, tw.Status)
	}
}
