// Package model holds the data types shared across the dispatch simulator:
// rescuer catalog entries, digital twins, emergency catalog entries and
// instances, and the intents used for assignment arbitration.
package model

import "fmt"

// TwinStatus mirrors the original rescuer_status_t enum.
type TwinStatus int

const (
	Idle TwinStatus = iota
	EnRouteToScene
	OnScene
	ReturningToBase
)

func (s TwinStatus) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case EnRouteToScene:
		return "EN_ROUTE_TO_SCENE"
	case OnScene:
		return "ON_SCENE"
	case ReturningToBase:
		return "RETURNING_TO_BASE"
	default:
		return "UNKNOWN"
	}
}

// RescuerType is an immutable catalog entry loaded from rescuers.yaml.
// Multiple digital twins reference the same *RescuerType.
type RescuerType struct {
	Name  string
	Speed int // grid cells per time unit, must be > 0
	BaseX int
	BaseY int
}

func (r *RescuerType) String() string {
	return fmt.Sprintf("%s(speed=%d,base=%d,%d)", r.Name, r.Speed, r.BaseX, r.BaseY)
}

// DigitalTwin is one simulated rescue unit. Its mutable fields (X, Y, Status)
// must only be read or written while holding the twin's exclusion lock in
// internal/twinpool — this struct itself carries no lock.
type DigitalTwin struct {
	ID      int // 1-based, dense, stable for the process lifetime
	X, Y    int
	Rescuer *RescuerType
	Status  TwinStatus
}

// TravelTime returns the simulated time needed to cover the Manhattan
// distance between the twin's current position and (x, y), rounded up —
// ceil(dist / speed), computed as integer division without a remainder
// loss, exactly as the original's (dist + speed - 1) / speed.
func (t *DigitalTwin) TravelTime(x, y int) int {
	dist := abs(t.X-x) + abs(t.Y-y)
	return (dist + t.Rescuer.Speed - 1) / t.Rescuer.Speed
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Snapshot returns a value copy safe to read without the twin's lock held —
// used for the deep-copy embedded into a completed assignment's log/record.
func (t *DigitalTwin) Snapshot() DigitalTwin {
	return *t
}
