// Package bus models the external message queue emergencies arrive on.
// Frames are NUL-free text records of the form "<type> <x> <y> <unix_ts>",
// capped at MaxFrameSize bytes — the Go equivalent of the original's POSIX
// mqd_t opened O_NONBLOCK, where a receive with nothing pending returns
// EAGAIN instead of blocking the caller.
package bus

import (
	"errors"
	"sync/atomic"
)

const (
	MinSlots     = 10
	MaxFrameSize = 512
)

var (
	// ErrFull is returned by Send when the bus has no free slot — the
	// Go analogue of mq_send failing because mq_maxmsg pending frames are
	// already queued.
	ErrFull = errors.New("bus: full")
	// ErrFrameTooLarge guards the MaxFrameSize bound from §6.
	ErrFrameTooLarge = errors.New("bus: frame exceeds max size")
)

// Bus is the non-blocking contract the ingress dispatcher polls and
// cmd/emitter (or tests) writes to.
type Bus interface {
	// Send enqueues frame without blocking; returns ErrFull if there is no
	// room. Mirrors mq_send on a full queue returning EAGAIN.
	Send(frame string) error
	// Receive dequeues one frame without blocking. ok is false when the
	// bus is empty — the caller (ingress) is expected to back off and
	// retry, exactly as main.c's mq_receive/EAGAIN loop does.
	Receive() (frame string, ok bool)
	// Close releases the bus. Further Sends return ErrFull.
	Close()
}

// MemoryBus is an in-process, bounded implementation suitable for the demo
// binary, cmd/emitter round-trips, and tests — grounded on the teacher's
// buffered-channel-plus-non-blocking-select idiom (internal/sched.Pool).
type MemoryBus struct {
	frames chan string

	sent     uint64
	received uint64
	dropped  uint64
	closed   atomic.Bool
}

// New creates a MemoryBus with room for `slots` frames (at least MinSlots,
// per §6).
func New(slots int) *MemoryBus {
	if slots < MinSlots {
		slots = MinSlots
	}
	return &MemoryBus{frames: make(chan string, slots)}
}

func (b *MemoryBus) Send(frame string) error {
	if len(frame) > MaxFrameSize {
		return ErrFrameTooLarge
	}
	if b.closed.Load() {
		return ErrFull
	}
	select {
	case b.frames <- frame:
		atomic.AddUint64(&b.sent, 1)
		return nil
	default:
		atomic.AddUint64(&b.dropped, 1)
		return ErrFull
	}
}

func (b *MemoryBus) Receive() (string, bool) {
	select {
	case f, ok := <-b.frames:
		if !ok {
			return "", false
		}
		atomic.AddUint64(&b.received, 1)
		return f, true
	default:
		return "", false
	}
}

func (b *MemoryBus) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.frames)
	}
}

// Stats is a point-in-time snapshot used by the admin/status surface.
type Stats struct {
	Sent, Received, Dropped uint64
	Queued, Capacity        int
}

func (b *MemoryBus) Snapshot() Stats {
	return Stats{
		Sent:     atomic.LoadUint64(&b.sent),
		Received: atomic.LoadUint64(&b.received),
		Dropped:  atomic.LoadUint64(&b.dropped),
		Queued:   len(b.frames),
		Capacity: cap(b.frames),
	}
}
