// Package simclock provides barrier.Clock implementations for tests and
// fast-forwarded demo runs, so a simulated twin's travel/on-scene delays
// don't have to run at wall-clock speed to exercise the barrier and worker
// state machines.
package simclock

import (
	"sync/atomic"
	"time"
)

// Scaled sleeps for d/Factor, compressing simulated travel and on-scene
// durations by a constant factor. Factor <= 1 behaves like real time.
type Scaled struct {
	Factor int64
}

func (s Scaled) Sleep(d time.Duration) {
	f := s.Factor
	if f < 1 {
		f = 1
	}
	time.Sleep(d / time.Duration(f))
}

// Manual is a fake clock for deterministic tests: Sleep blocks until the
// test calls Advance with at least as much simulated duration, instead of
// actually sleeping.
type Manual struct {
	elapsed int64 // nanoseconds, atomic
}

func (m *Manual) Sleep(d time.Duration) {
	target := atomic.LoadInt64(&m.elapsed) + int64(d)
	for atomic.LoadInt64(&m.elapsed) < target {
		time.Sleep(time.Millisecond)
	}
}

// Advance moves the manual clock forward by d, unblocking any Sleep calls
// whose target has now been reached.
func (m *Manual) Advance(d time.Duration) {
	atomic.AddInt64(&m.elapsed, int64(d))
}
