//go:build linux

package clock

import "golang.org/x/sys/unix"

// threadCPUUs reads CLOCK_THREAD_CPUTIME_ID for the calling OS thread. The
// result is only meaningful if the calling goroutine has been pinned to its
// OS thread with runtime.LockOSThread for the duration it is being tracked
// under a given ThreadID; this package has no goroutine of its own to pin,
// so that precondition is Instrumentation's to uphold (see the Listener
// doc comment in internal/interfaces).
func threadCPUUs() (uint64, bool) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_THREAD_CPUTIME_ID, &ts); err != nil {
		return 0, false
	}
	return uint64(ts.Sec)*1_000_000 + uint64(ts.Nsec)/1000, true
}
