package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dispatchsim/internal/model"
	"dispatchsim/internal/twinpool"
)

func buildEmergencyAndPool() (*model.EmergencyInstance, *twinpool.Pool) {
	ambulance := &model.RescuerType{Name: "ambulance", Speed: 5}
	fireTruck := &model.RescuerType{Name: "fire_truck", Speed: 5}

	twins := []*model.DigitalTwin{
		{ID: 1, X: 0, Y: 0, Rescuer: ambulance, Status: model.Idle},
		{ID: 2, X: 0, Y: 0, Rescuer: ambulance, Status: model.OnScene}, // busy, still a valid candidate
		{ID: 3, X: 0, Y: 0, Rescuer: fireTruck, Status: model.Idle},    // wrong type for this emergency
	}
	pool := twinpool.New(twins)

	etype := &model.EmergencyType{
		Name:     "cardiac_arrest",
		Priority: 1,
		Requirements: []model.RescuerRequirement{
			{Type: ambulance, RequiredCount: 1, TimeToManageSec: 600},
		},
	}
	e := &model.EmergencyInstance{
		ID:        1,
		Type:      etype,
		X:         1,
		Y:         1,
		Submitted: time.Now(),
		Status:    model.Waiting,
	}
	return e, pool
}

func TestCreateFromEmergency_IgnoresStatusButFiltersByType(t *testing.T) {
	e, pool := buildEmergencyAndPool()
	it := CreateFromEmergency(e, pool)

	require.True(t, it.CandidateTwinIDs.Contains(1))
	require.True(t, it.CandidateTwinIDs.Contains(2), "busy twins are still declared as intent candidates")
	require.False(t, it.CandidateTwinIDs.Contains(3), "wrong rescuer type must be excluded")
}

func TestCreateFromEmergency_TimestampIsOriginalSubmission(t *testing.T) {
	e, pool := buildEmergencyAndPool()
	it := CreateFromEmergency(e, pool)
	require.Equal(t, e.Submitted, it.Timestamp)
}

func TestCreateFromEmergency_ExcludesUnreachableTwins(t *testing.T) {
	e, pool := buildEmergencyAndPool()
	e.Type = &model.EmergencyType{
		Name:     "cardiac_arrest",
		Priority: 2, // 10s deadline
		Requirements: []model.RescuerRequirement{
			{Type: e.Type.Requirements[0].Type, RequiredCount: 1, TimeToManageSec: 600},
		},
	}
	e.X, e.Y = 1_000_000, 1_000_000 // far enough that no twin is reachable in 10s

	it := CreateFromEmergency(e, pool)
	require.Equal(t, 0, it.CandidateTwinIDs.Size())
}
