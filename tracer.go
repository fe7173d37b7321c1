package mtrace

import (
	"sync"

	"github.com/behrlich/go-mtrace/internal/buffer"
	"github.com/behrlich/go-mtrace/internal/clock"
	"github.com/behrlich/go-mtrace/internal/constants"
	"github.com/behrlich/go-mtrace/internal/logging"
	"github.com/behrlich/go-mtrace/internal/wire"
)

// Tracer is one active trace session: the event buffer, the clock
// configuration it was started with, and the per-thread CPU-time bookkeeping
// its hot path needs. It implements Listener directly so the lifecycle
// controller can register it with Instrumentation as-is.
//
// Every exported method here except the constructor is reachable from
// arbitrary runtime threads while the session is active. None of them block,
// allocate on the common path, or suspend the caller.
type Tracer struct {
	buf         *buffer.EventBuffer
	clockSource wire.ClockSource
	startWallUs uint64
	logger      *logging.Logger

	// threadCPUBase resolves the open question in this format's design
	// notes about concurrent insert-or-lookup from distinct threads: each
	// OS thread only ever reads and writes its own key (its first event
	// inserts its current thread-CPU time as the base; later events on that
	// same thread read it back),
	// so a sync.Map's disjoint-key access pattern is exactly what this
	// needs without a custom striped map or a lock shared across threads.
	threadCPUBase sync.Map // ThreadID -> uint64 (thread-cpu-us at first event)
}

// newTracer builds a Tracer and writes its header into the freshly
// allocated buffer. clockSource must already be resolved (degraded to wall
// if thread-CPU timestamps are unavailable) by the caller.
func newTracer(cfg Config, logger *logging.Logger) *Tracer {
	buf := buffer.New(cfg.BufferSize)
	startWallUs := clock.WallUs()

	t := &Tracer{
		buf:         buf,
		clockSource: cfg.ClockSource,
		startWallUs: startWallUs,
		logger:      logger,
	}

	h := wire.Header{
		Version:     cfg.ClockSource.HeaderVersion(),
		StartTimeUs: startWallUs,
		ClockSource: cfg.ClockSource,
	}
	h.Encode(buf.Data()[:constants.HeaderLen])

	return t
}

// logEvent is the hot path: reserve a record slot, encode it, and return.
// It never returns an error and never blocks; an overflowing buffer simply
// drops the event, recorded only as EventBuffer.Overflowed().
func (t *Tracer) logEvent(thread ThreadID, method MethodRef, action wire.Action) {
	size := t.clockSource.RecordSize()
	off, ok := t.buf.Reserve(size)
	if !ok {
		return
	}

	dtCPU, dtWall := t.deltas(thread)

	packed := wire.EncodeMethodAction(uint32(method), action)
	wire.EncodeRecord(t.buf.Data()[off:off+size], t.clockSource, uint16(thread), packed, dtCPU, dtWall)
}

// deltas computes the per-event cpu/wall deltas this record should carry,
// given the session's clock source. A thread's first observed event always
// records dt_cpu=0, per this format's contract for the thread_cpu_base
// bookkeeping; every later event on that thread reports elapsed cpu time
// since that first observation.
func (t *Tracer) deltas(thread ThreadID) (dtCPU, dtWall uint32) {
	if t.clockSource == wire.Wall {
		return 0, uint32(clock.WallUs() - t.startWallUs)
	}

	nowCPU, _ := clock.ThreadCPUUs()
	baseAny, loaded := t.threadCPUBase.LoadOrStore(thread, nowCPU)
	if !loaded {
		dtCPU = 0
	} else {
		dtCPU = uint32(nowCPU - baseAny.(uint64))
	}

	if t.clockSource == wire.Dual {
		dtWall = uint32(clock.WallUs() - t.startWallUs)
	}
	return dtCPU, dtWall
}

// OnMethodEntered implements Listener.
func (t *Tracer) OnMethodEntered(thread ThreadID, method MethodRef) {
	t.logEvent(thread, method, wire.ActionEnter)
}

// OnMethodExited implements Listener.
func (t *Tracer) OnMethodExited(thread ThreadID, method MethodRef) {
	t.logEvent(thread, method, wire.ActionExit)
}

// OnMethodUnwind implements Listener.
func (t *Tracer) OnMethodUnwind(thread ThreadID, method MethodRef) {
	t.logEvent(thread, method, wire.ActionUnwindException)
}

// OnDexPcMoved implements Listener. This tracer never registers for this
// hook; receiving one anyway means a defect upstream in the instrumentation
// subsystem. It is logged and ignored, never panicked on, and never written
// as a record.
func (t *Tracer) OnDexPcMoved(thread ThreadID, method MethodRef) {
	t.reportUnexpectedEvent("OnDexPcMoved")
}

// OnExceptionCaught implements Listener, with the same contract as
// OnDexPcMoved.
func (t *Tracer) OnExceptionCaught(thread ThreadID) {
	t.reportUnexpectedEvent("OnExceptionCaught")
}

func (t *Tracer) reportUnexpectedEvent(hook string) {
	logOrNil(t.logger).Errorf("mtrace: unexpected instrumentation event %s delivered to an active tracer", hook)
}

var _ Listener = (*Tracer)(nil)
