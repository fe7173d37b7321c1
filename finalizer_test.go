package mtrace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSink struct {
	written []byte
}

func (s *memSink) WriteFully(data []byte) error {
	s.written = append(s.written, data...)
	return nil
}

func (s *memSink) WriteChunked(tag string, preamble, records []byte) error {
	s.written = append(s.written, preamble...)
	s.written = append(s.written, records...)
	return nil
}

func TestFinalizePreambleContainsRequiredFields(t *testing.T) {
	rt := NewMockRuntime()
	rt.AddThread(1, "main")
	rt.SetMethod(4, MethodMetadata{ClassDescriptor: "LFoo;", Name: "bar", Signature: "()V", SourceFile: "Foo.java"})
	instr := NewMockInstrumentation()
	sink := &memSink{}

	cfg := Config{BufferSize: 1024, ClockSource: ClockDual}
	opts := Options{Runtime: rt, Instrumentation: instr, Sink: sink}

	require.NoError(t, Start(cfg, opts))
	instr.Dispatch("entered", 1, 4)
	instr.Dispatch("exited", 1, 4)
	require.NoError(t, Stop())

	out := string(sink.written)
	assert.True(t, strings.HasPrefix(out, "*version\n"))
	assert.Contains(t, out, "clock=dual\n")
	assert.Contains(t, out, "num-method-calls=2\n")
	assert.Contains(t, out, "*threads\n1\tmain\n")
	assert.Contains(t, out, "*methods\n0x4\tLFoo;\tbar\t()V\tFoo.java\n")
	assert.Contains(t, out, "*end\n")
}

// TestFinalizeListsLiveThreadsThatNeverLoggedAnEvent covers spec.md §4.7
// step 6: *threads must list every thread the runtime's registry knows
// about, not only the ones that happen to appear in decoded records.
func TestFinalizeListsLiveThreadsThatNeverLoggedAnEvent(t *testing.T) {
	rt := NewMockRuntime()
	rt.AddThread(1, "active")
	rt.AddThread(2, "idle")
	rt.SetMethod(4, MethodMetadata{ClassDescriptor: "LFoo;", Name: "bar", Signature: "()V", SourceFile: "Foo.java"})
	instr := NewMockInstrumentation()
	sink := &memSink{}

	cfg := Config{BufferSize: 1024, ClockSource: ClockDual}
	require.NoError(t, Start(cfg, Options{Runtime: rt, Instrumentation: instr, Sink: sink}))
	instr.Dispatch("entered", 1, 4)
	instr.Dispatch("exited", 1, 4)
	require.NoError(t, Stop())

	out := string(sink.written)
	assert.Contains(t, out, "*threads\n1\tactive\n2\tidle\n")
}

func TestFinalizeIncludesAllocStatsOnlyWhenFlagSet(t *testing.T) {
	rt := NewMockRuntime()
	rt.SetStat(StatAllocatedObjects, 7)
	instr := NewMockInstrumentation()
	sink := &memSink{}

	cfg := Config{BufferSize: 1024, ClockSource: ClockWall, Flags: FlagCountAllocs}
	require.NoError(t, Start(cfg, Options{Runtime: rt, Instrumentation: instr, Sink: sink}))
	require.NoError(t, Stop())

	assert.Contains(t, string(sink.written), "alloc-count=7\n")
}

func TestFinalizeOmitsAllocStatsWithoutFlag(t *testing.T) {
	rt := NewMockRuntime()
	instr := NewMockInstrumentation()
	sink := &memSink{}

	cfg := Config{BufferSize: 1024, ClockSource: ClockWall}
	require.NoError(t, Start(cfg, Options{Runtime: rt, Instrumentation: instr, Sink: sink}))
	require.NoError(t, Stop())

	assert.NotContains(t, string(sink.written), "alloc-count=")
}

func TestFinalizeSinkWriteFailureIsReportedAsSinkWriteFailed(t *testing.T) {
	rt := NewMockRuntime()
	instr := NewMockInstrumentation()

	cfg := Config{BufferSize: 1024, ClockSource: ClockWall}
	require.NoError(t, Start(cfg, Options{Runtime: rt, Instrumentation: instr, Sink: failingSink{}}))

	err := Stop()
	assert.True(t, IsCode(err, CodeSinkWriteFailed))
}

type failingSink struct{}

func (failingSink) WriteFully(data []byte) error { return assert.AnError }
func (failingSink) WriteChunked(tag string, preamble, records []byte) error {
	return assert.AnError
}
