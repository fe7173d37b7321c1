// Package buffer implements the tracer's lock-free event log: a fixed-size
// byte array with an atomically-advanced cursor, reserved via a
// compare-and-swap loop so concurrent writers never overlap.
package buffer

import (
	"sync/atomic"

	"github.com/behrlich/go-mtrace/internal/constants"
)

// EventBuffer is a fixed-capacity append-only byte log. Every write path
// through Reserve is non-blocking, non-allocating, and safe to call from
// any number of goroutines concurrently, including while arbitrary runtime
// locks are held, as long as the caller does not hold the tracer's own
// coordination lock (deadlock, not a buffer concern).
//
// The cursor only ever moves forward. Once Reserve reports overflow, it
// continues to report overflow for the remaining lifetime of the buffer;
// there is no recovery until the session stops.
type EventBuffer struct {
	data     []byte
	cursor   atomic.Int32
	overflow atomic.Bool
}

// New allocates an EventBuffer of the given total size (including the
// header region) with the cursor initialized past the header, matching the
// invariant that record data never overlaps the header.
func New(size int) *EventBuffer {
	b := &EventBuffer{data: make([]byte, size)}
	b.cursor.Store(constants.HeaderLen)
	return b
}

// Data returns the underlying backing array. Callers must only read it
// while no Reserve can be concurrently in flight — in practice, after the
// world has been stopped for finalization.
func (b *EventBuffer) Data() []byte {
	return b.data
}

// Size returns the buffer's total capacity, header included.
func (b *EventBuffer) Size() int {
	return len(b.data)
}

// Reserve atomically claims n contiguous bytes at the current cursor and
// returns the offset at which the caller may write them. If the buffer
// does not have n bytes left, Reserve marks the buffer overflowed and
// returns ok=false without moving the cursor.
//
// The CAS loop mirrors the single-winner-advances pattern used elsewhere in
// this codebase for contended atomic counters: read, compute, attempt the
// swap, retry only on a concurrent loser.
func (b *EventBuffer) Reserve(n int) (offset int, ok bool) {
	for {
		old := b.cursor.Load()
		next := old + int32(n)
		if int(next) > len(b.data) {
			b.overflow.Store(true)
			return 0, false
		}
		if b.cursor.CompareAndSwap(old, next) {
			return int(old), true
		}
	}
}

// PublishedLen returns the cursor's current value with acquire ordering:
// the number of bytes, header included, that are either fully written or
// in the process of being written by a winner of Reserve. Callers must
// ensure no concurrent Reserve is possible when they need this to mean
// "fully written" rather than "claimed" — in this tracer, that means
// calling it only once the world is stopped.
func (b *EventBuffer) PublishedLen() int {
	return int(b.cursor.Load())
}

// Overflowed reports whether any Reserve call has ever failed due to lack
// of space.
func (b *EventBuffer) Overflowed() bool {
	return b.overflow.Load()
}
