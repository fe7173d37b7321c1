package mtrace

import (
	"github.com/behrlich/go-mtrace/internal/constants"
	"github.com/behrlich/go-mtrace/internal/logging"
)

// Config contains parameters for starting a trace session.
type Config struct {
	// BufferSize is the total size of the event buffer, header included.
	BufferSize int

	// Flags is a caller-defined bitset; only FlagCountAllocs is
	// interpreted by the tracer itself.
	Flags uint32

	// ClockSource selects which timestamp deltas get recorded per event.
	ClockSource ClockSource

	// DirectToExternalSink routes the finalized trace through Sink's
	// chunked write path instead of opening Filename/FD as a plain file.
	DirectToExternalSink bool

	// Filename is opened as the output file when DirectToExternalSink is
	// false and FD is zero.
	Filename string

	// FD is used instead of Filename when non-zero and
	// DirectToExternalSink is false.
	FD int
}

// DefaultConfig returns sane defaults for starting a session.
func DefaultConfig() Config {
	return Config{
		BufferSize:  constants.DefaultBufferSize,
		ClockSource: ClockDual,
	}
}

// Options carries the collaborators a session needs beyond Config. Runtime
// and Instrumentation have no usable default outside a real managed
// runtime; callers embedding this tracer must supply them. Logger and Sink
// may be left nil.
type Options struct {
	// Logger receives lifecycle and warning/error messages. If nil, they
	// go to logging.Default().
	Logger *logging.Logger

	// Runtime is the managed-runtime collaborator (thread registry,
	// suspend/resume, opaque counters).
	Runtime Runtime

	// Instrumentation delivers method_entered/method_exited/method_unwind
	// callbacks.
	Instrumentation Instrumentation

	// Sink is the output destination. If nil, Start opens Config.Filename
	// or Config.FD as a plain file.
	Sink Sink
}
