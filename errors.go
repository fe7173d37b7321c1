package mtrace

import (
	"errors"
	"fmt"
	"syscall"
)

// Error is a structured tracer error carrying enough context to log and to
// match programmatically via errors.Is/errors.As.
type Error struct {
	Op    string        // operation that failed (e.g. "Start", "Stop", "WriteSink")
	Code  ErrorCode     // high-level error category
	Errno syscall.Errno // OS error, if the failure came from a syscall (0 otherwise)
	Msg   string        // human-readable message
	Inner error         // wrapped error, if any
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Op != "" {
		return fmt.Sprintf("mtrace: %s: %s", e.Op, msg)
	}
	return fmt.Sprintf("mtrace: %s", msg)
}

// Unwrap supports errors.Is/errors.As against Inner.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is supports errors.Is comparison by error code.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// ErrorCode enumerates the error kinds named in this format's error model.
// The lifecycle codes (already active, not active) and the sink failures
// are returned as a *Error by Start/Stop; the rest are logged and ignored
// on the hot path, or asserted, and never returned.
type ErrorCode string

const (
	// CodeAlreadyActive: Start called while a session is already running.
	// Logged and returned to the caller — the existing session continues
	// untouched.
	CodeAlreadyActive ErrorCode = "already active"

	// CodeNotActive: Stop called with no session running. Logged and
	// returned to the caller; nothing else happens.
	CodeNotActive ErrorCode = "not active"

	// CodeSinkOpenFailed: the output sink could not be opened. Returned by
	// Start as a *Error after the world has been resumed.
	CodeSinkOpenFailed ErrorCode = "sink open failed"

	// CodeSinkWriteFailed: the finalizer could not write the completed
	// trace. Returned by Stop as a *Error wrapping the OS error.
	CodeSinkWriteFailed ErrorCode = "sink write failed"

	// CodeUnsupportedClock: the requested clock source needs thread-CPU
	// timestamps the platform cannot provide. Silently degrades the
	// session to wall-clock and logs one warning; never returned as an
	// error.
	CodeUnsupportedClock ErrorCode = "unsupported clock"

	// CodeUnexpectedEvent: the instrumentation subsystem delivered a hook
	// this tracer never registers for (dex-pc-moved, exception-caught).
	// Logged as an error and ignored; no record is written.
	CodeUnexpectedEvent ErrorCode = "unexpected instrumentation event"

	// CodeEncodeActionUnknown: an event carried an action byte outside the
	// defined set. This is a programming defect elsewhere in the runtime,
	// not a runtime condition; wire.EncodeMethodAction panics instead of
	// returning this gracefully.
	CodeEncodeActionUnknown ErrorCode = "unknown action in encode"
)

// NewError builds a structured error with no wrapped cause.
func NewError(op string, code ErrorCode, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

// WrapError wraps inner with tracer context under the given code, and
// records a syscall.Errno found in inner's chain in Errno.
func WrapError(op string, code ErrorCode, inner error) *Error {
	if inner == nil {
		return nil
	}
	e := &Error{Op: op, Code: code, Msg: inner.Error(), Inner: inner}
	var errno syscall.Errno
	if errors.As(inner, &errno) {
		e.Errno = errno
	}
	return e
}

// IsCode reports whether err is a *Error carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}
