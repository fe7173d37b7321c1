// Package mtrace implements a method-level execution tracer for a managed
// runtime: a binary event log fed by instrumentation callbacks, a lifecycle
// controller that installs/removes those callbacks under a stop-the-world
// bracket, and a finalizer that turns the buffer into the on-disk trace
// format on Stop.
package mtrace

import (
	"os"
	"sync"

	"github.com/behrlich/go-mtrace/internal/clock"
	"github.com/behrlich/go-mtrace/internal/constants"
	"github.com/behrlich/go-mtrace/internal/logging"
)

// traceLock guards theTrace the way logging's package-level mu guards its
// default logger: a single mutex around a package-level slot, held for the
// full duration of whichever of Start/Stop/IsActive is in progress.
var (
	traceLock sync.Mutex
	theTrace  *session
)

// session bundles everything Stop needs to finalize and tear down a running
// Tracer, so the slot under traceLock is a single pointer.
type session struct {
	tracer  *Tracer
	cfg     Config
	opts    Options
	sink    Sink
	ownSink bool // true if Stop must close file itself (created, not an adopted fd)
	file    *os.File
}

// Start installs a Tracer and begins logging instrumentation events.
// It is a package-level function, not a method, because only one session
// may exist at a time: the format has no concept of nested or concurrent
// sessions.
//
// On success the returned error is always nil; Start only ever returns a
// non-nil *Error for CodeAlreadyActive (logged, not fatal, session
// unchanged) or CodeSinkOpenFailed (the world has already been resumed by
// the time this returns).
func Start(cfg Config, opts Options) error {
	traceLock.Lock()
	defer traceLock.Unlock()

	if theTrace != nil {
		logOrNil(opts.Logger).Errorf("mtrace: Start called while a session is already active")
		return NewError("Start", CodeAlreadyActive, "a trace session is already active")
	}

	opts.Runtime.SuspendAll("mtrace.Start")

	resolvedClock, degraded := resolveConfigClock(cfg.ClockSource)
	if degraded {
		logOrNil(opts.Logger).Warnf("mtrace: thread-cpu timestamps unavailable, degrading to wall clock")
	}
	cfg.ClockSource = resolvedClock

	sink, closeOnStop, file, err := openSink(cfg, opts)
	if err != nil {
		opts.Runtime.ResumeAll()
		return WrapError("Start", CodeSinkOpenFailed, err)
	}

	tracer := newTracer(cfg, opts.Logger)

	if cfg.Flags&constants.FlagCountAllocs != 0 {
		opts.Runtime.SetStatsEnabled(true)
	}

	opts.Instrumentation.AddListener(tracer)

	theTrace = &session{
		tracer:  tracer,
		cfg:     cfg,
		opts:    opts,
		sink:    sink,
		ownSink: closeOnStop,
		file:    file,
	}

	opts.Runtime.ResumeAll()

	logOrNil(opts.Logger).Infof("mtrace: trace session started, buffer_size=%d clock=%s", cfg.BufferSize, cfg.ClockSource)
	return nil
}

// Stop ends the active session, if any: it stops the world, unregisters the
// listener, finalizes the buffer to the sink, and resumes the world. If no
// session is active, Stop logs and returns a CodeNotActive error without
// touching the world.
//
// traceLock is held for the entire body, not just the slot swap: the
// invariant a session exists iff its Tracer is registered with
// Instrumentation must hold for any observer that can acquire traceLock, so
// a concurrent Start cannot be allowed to see theTrace == nil and begin a
// new session — adding its own listener and suspending/resuming the same
// Runtime — before this Stop has finished suspending the world, removing
// its listener, and finalizing.
func Stop() error {
	traceLock.Lock()
	defer traceLock.Unlock()

	s := theTrace
	if s == nil {
		logging.Default().Errorf("mtrace: Stop called with no active session")
		return NewError("Stop", CodeNotActive, "no trace session is active")
	}
	theTrace = nil

	s.opts.Runtime.SuspendAll("mtrace.Stop")

	s.opts.Instrumentation.RemoveListener(s.tracer)

	err := finalize(s)

	s.opts.Runtime.ResumeAll()

	if s.ownSink && s.file != nil {
		s.file.Close()
	}

	if err != nil {
		logOrNil(s.opts.Logger).Errorf("mtrace: finalize failed: %v", err)
		return err
	}

	logOrNil(s.opts.Logger).Infof("mtrace: trace session stopped")
	return nil
}

// Shutdown stops the active session if one exists, and is a silent no-op
// otherwise — unlike Stop, it never logs or returns an error for the
// not-active case, making it safe to call unconditionally during process
// teardown.
func Shutdown() {
	if !IsActive() {
		return
	}
	_ = Stop()
}

// IsActive reports whether a trace session currently exists.
func IsActive() bool {
	traceLock.Lock()
	defer traceLock.Unlock()
	return theTrace != nil
}

// resolveConfigClock downgrades cfg's clock source to wall-only when
// thread-cpu timestamps are unavailable on this platform.
func resolveConfigClock(want ClockSource) (resolved ClockSource, degraded bool) {
	src := clock.SourceDual
	switch want {
	case ClockWall:
		src = clock.SourceWall
	case ClockThreadCPU:
		src = clock.SourceThreadCPU
	}
	got, degraded := clock.Resolve(src)
	switch got {
	case clock.SourceWall:
		return ClockWall, degraded
	case clock.SourceThreadCPU:
		return ClockThreadCPU, degraded
	default:
		return ClockDual, degraded
	}
}

func logOrNil(l *logging.Logger) *logging.Logger {
	if l != nil {
		return l
	}
	return logging.Default()
}
