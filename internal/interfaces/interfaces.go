// Package interfaces provides internal interface definitions for go-mtrace.
// These are separate from the public interfaces to avoid circular imports
// between the root package and internal packages.
package interfaces

// ThreadID identifies an OS-level thread the way the managed runtime does:
// a small stable integer, not a pointer.
type ThreadID uint32

// MethodRef identifies a managed method the way the instrumentation
// subsystem does: an opaque, 4-byte-aligned reference. The tracer never
// dereferences it directly; it only packs/unpacks it and asks Runtime to
// resolve it to MethodMetadata at finalization time.
type MethodRef uint64

// MethodMetadata describes a method well enough to print the textual
// preamble's "*methods" section.
type MethodMetadata struct {
	ClassDescriptor string
	Name            string
	Signature       string
	SourceFile      string
}

// ThreadInfo describes a thread well enough to print the preamble's
// "*threads" section.
type ThreadInfo struct {
	ID   ThreadID
	Name string
}

// StatKind names one of the opaque counters Runtime can report.
type StatKind int

const (
	StatAllocatedObjects StatKind = iota
	StatAllocatedBytes
	StatGCCount
)

// Runtime is the managed-runtime collaborator: thread registry, world-stop
// control, and the opaque allocation/GC counters the finalizer may embed in
// the preamble. The tracer never pauses threads itself; it only asks Runtime
// to do it around registration and teardown.
type Runtime interface {
	SuspendAll(reason string)
	ResumeAll()
	ThreadList() []ThreadInfo
	SetStatsEnabled(enabled bool)
	Stat(kind StatKind) uint64
	MethodMetadata(ref MethodRef) MethodMetadata
}

// Listener is the set of instrumentation hooks a Tracer registers. Only the
// first three are ever populated by this package; OnDexPcMoved and
// OnExceptionCaught exist so Instrumentation can dispatch to a single
// interface, but the tracer must never receive them (doing so is a defect
// in the instrumentation subsystem, logged and ignored, not panicked on).
//
// Instrumentation must deliver every event for a given ThreadID from a
// goroutine pinned to one OS thread with runtime.LockOSThread (called once,
// before the first event for that ThreadID is dispatched, and held for the
// thread's lifetime). The tracer reads CLOCK_THREAD_CPUTIME_ID for the
// calling OS thread on every event and keys its running base on ThreadID;
// if the runtime goroutine were free to migrate between OS threads between
// two events, dt_cpu would silently mix two threads' clocks.
type Listener interface {
	OnMethodEntered(thread ThreadID, method MethodRef)
	OnMethodExited(thread ThreadID, method MethodRef)
	OnMethodUnwind(thread ThreadID, method MethodRef)
	OnDexPcMoved(thread ThreadID, method MethodRef)
	OnExceptionCaught(thread ThreadID)
}

// Instrumentation is the callback-delivery collaborator. AddListener must be
// called only while the world is stopped (the lifecycle controller
// guarantees this); RemoveListener the same.
type Instrumentation interface {
	AddListener(l Listener)
	RemoveListener(l Listener)
}

// Sink is the output collaborator: either a plain file or an external
// chunked channel. Exactly one of the two write paths is used per session,
// decided by Config.DirectToExternalSink.
type Sink interface {
	// WriteFully writes the whole preamble+buffer payload to a file-like
	// destination. Implementations must not return having written a
	// partial payload without an error.
	WriteFully(data []byte) error

	// WriteChunked writes the payload as a tagged two-part external stream:
	// the preamble and the raw event buffer as separate chunks under the
	// given tag, for destinations that frame output themselves.
	WriteChunked(tag string, preamble, records []byte) error
}

// Logger is the minimal logging surface the tracer depends on, decoupled
// from any concrete logging package so callers can supply their own.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
