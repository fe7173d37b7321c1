// Package fake provides an in-process Runtime and Instrumentation pair for
// exercising a trace session without a real managed runtime underneath it:
// the demo CLI drives method calls through Instrumentation, and Runtime
// answers the thread/method-metadata/stat questions the
// finalizer asks when it builds the textual preamble.
package fake

import (
	"sync"

	"github.com/behrlich/go-mtrace"
)

// Runtime is a minimal in-memory stand-in for a managed runtime's thread
// registry and allocation counters. Reads and writes are guarded by a
// single RWMutex; a tracer's own bookkeeping never touches Runtime on its
// hot path, so unlike the sharded locking a real block-device backend
// needs for throughput, one lock here is plenty.
type Runtime struct {
	mu      sync.RWMutex
	threads map[mtrace.ThreadID]string
	methods map[mtrace.MethodRef]mtrace.MethodMetadata
	stats   map[mtrace.StatKind]uint64

	suspended bool
}

// NewRuntime creates an empty Runtime.
func NewRuntime() *Runtime {
	return &Runtime{
		threads: make(map[mtrace.ThreadID]string),
		methods: make(map[mtrace.MethodRef]mtrace.MethodMetadata),
		stats:   make(map[mtrace.StatKind]uint64),
	}
}

// RegisterThread makes a thread visible to ThreadList/the preamble.
func (r *Runtime) RegisterThread(id mtrace.ThreadID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.threads[id] = name
}

// RegisterMethod makes metadata resolvable for a method reference.
func (r *Runtime) RegisterMethod(ref mtrace.MethodRef, md mtrace.MethodMetadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[ref] = md
}

// IncrStat adds delta to the named counter, the way a real allocator would
// bump its live counters on every allocation.
func (r *Runtime) IncrStat(kind mtrace.StatKind, delta uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats[kind] += delta
}

func (r *Runtime) SuspendAll(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suspended = true
}

func (r *Runtime) ResumeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suspended = false
}

func (r *Runtime) ThreadList() []mtrace.ThreadInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]mtrace.ThreadInfo, 0, len(r.threads))
	for id, name := range r.threads {
		out = append(out, mtrace.ThreadInfo{ID: id, Name: name})
	}
	return out
}

func (r *Runtime) SetStatsEnabled(enabled bool) {
	// The fake runtime always tracks stats; enabling/disabling only
	// matters to a real allocator's instrumentation overhead.
}

func (r *Runtime) Stat(kind mtrace.StatKind) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats[kind]
}

func (r *Runtime) MethodMetadata(ref mtrace.MethodRef) mtrace.MethodMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.methods[ref]
}

var _ mtrace.Runtime = (*Runtime)(nil)

// Instrumentation fans out method-entry/exit/unwind events to whichever
// single listener a trace session has registered. Real instrumentation
// subsystems support exactly one tracer listener at a time for this same
// reason: the format has no concept of more than one concurrent session.
type Instrumentation struct {
	mu       sync.RWMutex
	listener mtrace.Listener
}

// NewInstrumentation creates an Instrumentation with no listener attached.
func NewInstrumentation() *Instrumentation {
	return &Instrumentation{}
}

func (i *Instrumentation) AddListener(l mtrace.Listener) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.listener = l
}

func (i *Instrumentation) RemoveListener(l mtrace.Listener) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.listener == l {
		i.listener = nil
	}
}

// MethodEntered simulates the instrumentation subsystem observing a method
// entry on thread, and is safe to call concurrently from any number of
// goroutines standing in for runtime threads. Callers representing a given
// ThreadID across multiple calls must pin that goroutine with
// runtime.LockOSThread first (see mtrace.Listener's doc comment) for
// thread-cpu deltas to be meaningful.
func (i *Instrumentation) MethodEntered(thread mtrace.ThreadID, method mtrace.MethodRef) {
	if l := i.current(); l != nil {
		l.OnMethodEntered(thread, method)
	}
}

// MethodExited simulates a method exit.
func (i *Instrumentation) MethodExited(thread mtrace.ThreadID, method mtrace.MethodRef) {
	if l := i.current(); l != nil {
		l.OnMethodExited(thread, method)
	}
}

// MethodUnwind simulates an exceptional unwind through a method.
func (i *Instrumentation) MethodUnwind(thread mtrace.ThreadID, method mtrace.MethodRef) {
	if l := i.current(); l != nil {
		l.OnMethodUnwind(thread, method)
	}
}

func (i *Instrumentation) current() mtrace.Listener {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.listener
}

var _ mtrace.Instrumentation = (*Instrumentation)(nil)
