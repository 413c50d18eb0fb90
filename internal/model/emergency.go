package model

import (
	"strconv"
	"time"
)

// EmergencyStatus mirrors the original emergency_status_t enum.
type EmergencyStatus int

const (
	Waiting EmergencyStatus = iota
	Assigned
	InProgress
	Paused
	Completed
	Canceled
	Timeout
)

func (s EmergencyStatus) String() string {
	switch s {
	case Waiting:
		return "WAITING"
	case Assigned:
		return "ASSIGNED"
	case InProgress:
		return "IN_PROGRESS"
	case Paused:
		return "PAUSED"
	case Completed:
		return "COMPLETED"
	case Canceled:
		return "CANCELED"
	case Timeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// Deadline bounds by priority, carried over from worker_thread.h. Priority 0
// gets a day-long ceiling rather than an unbounded deadline, so arithmetic
// against it never needs to guard for overflow.
const (
	TimeoutPriority1 = 30 * time.Second
	TimeoutPriority2 = 10 * time.Second
	TimeoutMax       = 86400 * time.Second
)

// RescuerRequirement is one line of an emergency type's rescuer spec:
// "<type>:<count>,<duration>".
type RescuerRequirement struct {
	Type            *RescuerType
	RequiredCount   int
	TimeToManageSec int
}

// EmergencyType is an immutable catalog entry loaded from
// emergency_types.yaml. An emergency type that failed to resolve any of its
// requested rescuer type names against the rescuer catalog is dropped
// wholesale at load time; one that resolved only some of them keeps just
// those requirements (see internal/config).
type EmergencyType struct {
	Name         string
	Description  string
	Priority     int16
	Requirements []RescuerRequirement
}

// Clone returns a deep copy of t: its own Requirements slice, so mutating
// the returned instance's type never reaches back into the shared catalog.
// The *RescuerType pointers inside each requirement still point at the
// catalog's rescuer types, which are themselves immutable.
func (t *EmergencyType) Clone() *EmergencyType {
	out := *t
	out.Requirements = append([]RescuerRequirement(nil), t.Requirements...)
	return &out
}

// Deadline returns the absolute time by which the emergency must be
// resolved, given the instance's original submission time.
func (t *EmergencyType) Deadline(submitted time.Time) time.Time {
	switch t.Priority {
	case 1:
		return submitted.Add(TimeoutPriority1)
	case 2:
		return submitted.Add(TimeoutPriority2)
	default:
		return submitted.Add(TimeoutMax)
	}
}

// EmergencyInstance is a mutable, deep-copied occurrence of an EmergencyType
// at a location and time. Its ID is monotonic and assigned once by the
// ingress dispatcher.
type EmergencyInstance struct {
	ID        int
	Type      *EmergencyType
	X, Y      int
	Submitted time.Time
	Status    EmergencyStatus

	// RescuerCount and AssignedTwins are populated once assignment succeeds;
	// AssignedTwins holds a deep-copied snapshot, not live pool pointers.
	RescuerCount  int
	AssignedTwins []DigitalTwin
}

// LogID renders the tag used for per-emergency log lines, e.g. "Emergency 7".
func (e *EmergencyInstance) LogID() string {
	return "Emergency " + strconv.Itoa(e.ID)
}
