package twinpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"dispatchsim/internal/model"
)

func twoTwins() []*model.DigitalTwin {
	rt := &model.RescuerType{Name: "ambulance", Speed: 5}
	return []*model.DigitalTwin{
		{ID: 1, X: 0, Y: 0, Rescuer: rt, Status: model.Idle},
		{ID: 2, X: 1, Y: 1, Rescuer: rt, Status: model.Idle},
	}
}

func TestAll_SortedByID(t *testing.T) {
	p := New(twoTwins())
	all := p.All()
	require.Len(t, all, 2)
	require.Equal(t, 1, all[0].ID)
	require.Equal(t, 2, all[1].ID)
}

func TestSnapshot_IsIndependentCopy(t *testing.T) {
	p := New(twoTwins())
	snap := p.Snapshot(1)
	snap.X = 999

	require.Equal(t, 0, p.Snapshot(1).X)
}

func TestTryLock_SecondAttemptFails(t *testing.T) {
	p := New(twoTwins())
	require.True(t, p.TryLock(1))
	require.False(t, p.TryLock(1))
	p.Unlock(1)
	require.True(t, p.TryLock(1))
}

func TestMutateLocked_RequiresCallerToHoldLock(t *testing.T) {
	p := New(twoTwins())
	require.True(t, p.TryLock(1))
	p.MutateLocked(1, func(t *model.DigitalTwin) { t.Status = model.OnScene })
	p.Unlock(1)

	require.Equal(t, model.OnScene, p.Snapshot(1).Status)
}

func TestWithLock_AcquiresRunsReleases(t *testing.T) {
	p := New(twoTwins())
	p.WithLock(2, func(t *model.DigitalTwin) { t.Status = model.EnRouteToScene })

	require.Equal(t, model.EnRouteToScene, p.Snapshot(2).Status)
	require.True(t, p.TryLock(2), "WithLock must release before returning")
	p.Unlock(2)
}

func TestOccupancy_CountsIdleVsBusy(t *testing.T) {
	p := New(twoTwins())
	p.WithLock(1, func(t *model.DigitalTwin) { t.Status = model.OnScene })

	idle, busy := p.Occupancy()
	require.Equal(t, 1, idle)
	require.Equal(t, 1, busy)
}

func TestSlotFor_UnknownIDPanics(t *testing.T) {
	p := New(twoTwins())
	require.Panics(t, func() { p.Snapshot(999) })
}

func TestConcurrentTryLock_OnlyOneWinner(t *testing.T) {
	p := New(twoTwins())
	var wg sync.WaitGroup
	wins := make(chan int, 8)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p.TryLock(1) {
				wins <- 1
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	require.Equal(t, 1, count)
}
