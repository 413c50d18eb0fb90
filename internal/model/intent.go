package model

import (
	"time"

	"github.com/hashicorp/go-set/v3"
)

// WindowPeriod is the same-priority FIFO precedence window from intent.c's
// can_proceed: an older, same-priority conflicting intent blocks a younger
// one only when the younger emergency was submitted less than this long
// after the older one.
const WindowPeriod = 5 * time.Second

// Intent declares which twins an in-flight emergency might still claim, for
// conflict arbitration against every other pending emergency. Timestamp is
// the emergency's ORIGINAL submission time, not the time the intent was
// (re)computed — carried over unchanged across refreshes, matching
// create_intent_from_emergency in the original source.
type Intent struct {
	EmergencyID int
	Priority    int16
	Timestamp   time.Time
	CandidateTwinIDs *set.Set[int]
}

// Conflicts reports whether a and b name an overlapping candidate twin.
func Conflicts(a, b *Intent) bool {
	return a.CandidateTwinIDs.Intersect(b.CandidateTwinIDs).Size() > 0
}
