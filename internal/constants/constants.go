// Package constants holds the fixed layout values of the trace format and
// the tunables that control the tracer's runtime behavior.
package constants

import "time"

// Trace file magic ('S','L','O','W' read little-endian) and header layout.
const (
	// Magic is the four-byte signature at offset 0 of every trace file.
	Magic uint32 = 0x574F4C53

	// HeaderLen is the fixed size of the header region. Record data starts here.
	HeaderLen = 32

	// VersionSingleClock is used when the session records only one of
	// {wall, thread_cpu}.
	VersionSingleClock = 2

	// VersionDualClock is used when the session records both wall and
	// thread-cpu deltas per record.
	VersionDualClock = 3

	// OffsetToData is the version-independent "data starts here" header field;
	// it is always equal to HeaderLen.
	OffsetToData = HeaderLen
)

// Record field widths, in bytes.
const (
	RecordSizeSingleClock = 10 // tid(2) + method_action(4) + delta(4)
	RecordSizeDualClock   = 14 // tid(2) + method_action(4) + dt_cpu(4) + dt_wall(4)
)

// Method-action packing. The low 2 bits of the packed u32 hold the action;
// the method reference occupies the high 30 bits and must be 4-byte aligned
// (its own low 2 bits must already be zero).
const (
	ActionBits  = 2
	ActionMask  = 0x3
	MethodShift = ActionBits
)

// Instrumentation event actions, packed into method_action's low bits.
const (
	ActionEnter           = 0
	ActionExit            = 1
	ActionUnwindException = 2
	// action 3 is reserved by the format.
)

// FlagCountAllocs is the only bit the tracer itself interprets in the flags
// bitset passed to Start; any other bit is the caller's business.
const FlagCountAllocs uint32 = 1 << 0

// DefaultBufferSize is used by DefaultConfig when the caller does not size
// the buffer explicitly.
const DefaultBufferSize = 8 << 20 // 8MiB

// Clock overhead calibration loop shape, taken from the system this format
// was distilled from: 4000 outer iterations of 8 inner clock reads each.
const (
	OverheadOuterIterations = 4000
	OverheadInnerIterations = 8
	OverheadTotalIterations = OverheadOuterIterations * OverheadInnerIterations
)

// DemoShutdownGrace is how long cmd/mtrace-demo waits for worker goroutines
// to notice a SIGINT/SIGTERM cancellation before it stops the trace anyway.
const DemoShutdownGrace = 50 * time.Millisecond
