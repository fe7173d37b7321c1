// Package clock provides the wall-clock and per-thread-CPU timestamp sources
// the tracer's hot path reads from, plus the overhead-calibration routine
// used to report "clock-call-overhead-nsec" in the finalized trace.
package clock

import (
	"time"

	"github.com/behrlich/go-mtrace/internal/constants"
)

// WallUs returns the current wall-clock time in microseconds since the
// Unix epoch.
func WallUs() uint64 {
	return uint64(time.Now().UnixMicro())
}

// ThreadCPUUs returns the calling goroutine's underlying OS thread's
// consumed CPU time in microseconds, and whether the platform can report
// it at all. Callers that get back available=false must fall back to
// WallUs and are expected to degrade the whole session to Wall, not just
// this one read (see Source.Resolve below).
func ThreadCPUUs() (us uint64, available bool) {
	return threadCPUUs()
}

// Source is the three-way clock configuration a session is calibrated for,
// independent of wire.ClockSource so this package does not need to import
// the wire format.
type Source int

const (
	SourceWall Source = iota
	SourceThreadCPU
	SourceDual
)

// Resolve downgrades src to SourceWall if thread-CPU timestamps are
// unavailable on this platform, reporting whether it had to. Callers should
// log a warning exactly once per session when degraded is true.
func Resolve(src Source) (resolved Source, degraded bool) {
	if src == SourceWall {
		return SourceWall, false
	}
	if _, available := ThreadCPUUs(); available {
		return src, false
	}
	return SourceWall, true
}

// MeasureOverheadNanos calibrates the average cost of one round of clock
// reads for the given source (one read, or one of each clock for
// SourceDual), in nanoseconds. It runs OverheadOuterIterations outer loops
// of OverheadInnerIterations back-to-back rounds each, using the elapsed
// thread-CPU time (not wall time, to stay immune to scheduling noise)
// divided by the total round count. If thread-CPU time is
// unavailable the caller has already downgraded to wall-only and this
// falls back to measuring against wall time instead.
func MeasureOverheadNanos(src Source) uint32 {
	read := func() {
		switch src {
		case SourceWall:
			_ = WallUs()
		case SourceThreadCPU:
			_, _ = ThreadCPUUs()
		case SourceDual:
			_ = WallUs()
			_, _ = ThreadCPUUs()
		}
	}

	startCPU, cpuOK := ThreadCPUUs()
	startWall := WallUs()

	for i := 0; i < constants.OverheadOuterIterations; i++ {
		for j := 0; j < constants.OverheadInnerIterations; j++ {
			read()
		}
	}

	var elapsedUs uint64
	if cpuOK {
		endCPU, _ := ThreadCPUUs()
		elapsedUs = endCPU - startCPU
	} else {
		elapsedUs = WallUs() - startWall
	}

	if constants.OverheadTotalIterations == 0 {
		return 0
	}
	nsPerCall := (elapsedUs * 1000) / uint64(constants.OverheadTotalIterations)
	return uint32(nsPerCall)
}
