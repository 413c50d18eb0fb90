package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEmergencyType_Deadline_ByPriority(t *testing.T) {
	submitted := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	p1 := &EmergencyType{Name: "cardiac_arrest", Priority: 1}
	require.Equal(t, submitted.Add(TimeoutPriority1), p1.Deadline(submitted))

	p2 := &EmergencyType{Name: "traffic_accident", Priority: 2}
	require.Equal(t, submitted.Add(TimeoutPriority2), p2.Deadline(submitted))

	p0 := &EmergencyType{Name: "noise_complaint", Priority: 0}
	require.Equal(t, submitted.Add(TimeoutMax), p0.Deadline(submitted))
}

func TestEmergencyType_Clone_IsIndependentOfSource(t *testing.T) {
	ambulance := &RescuerType{Name: "ambulance", Speed: 5}
	src := &EmergencyType{
		Name:        "cardiac_arrest",
		Description: "suspected cardiac arrest",
		Priority:    1,
		Requirements: []RescuerRequirement{
			{Type: ambulance, RequiredCount: 1, TimeToManageSec: 600},
		},
	}

	clone := src.Clone()
	require.Equal(t, src.Name, clone.Name)
	require.Equal(t, src.Description, clone.Description)
	require.Equal(t, src.Priority, clone.Priority)
	require.Equal(t, src.Requirements, clone.Requirements)
	require.Same(t, src.Requirements[0].Type, clone.Requirements[0].Type, "rescuer type pointers stay shared with the catalog")

	clone.Requirements[0].RequiredCount = 99
	require.Equal(t, 1, src.Requirements[0].RequiredCount, "mutating the clone's requirements must not reach back into the source")
}

func TestEmergencyInstance_LogID(t *testing.T) {
	e := &EmergencyInstance{ID: 42}
	require.Equal(t, "Emergency 42", e.LogID())
}

func TestEmergencyStatus_String(t *testing.T) {
	cases := map[EmergencyStatus]string{
		Waiting:             "WAITING",
		Assigned:            "ASSIGNED",
		InProgress:          "IN_PROGRESS",
		Paused:              "PAUSED",
		Completed:           "COMPLETED",
		Canceled:            "CANCELED",
		Timeout:             "TIMEOUT",
		EmergencyStatus(99): "UNKNOWN",
	}
	for status, want := range cases {
		require.Equal(t, want, status.String())
	}
}
