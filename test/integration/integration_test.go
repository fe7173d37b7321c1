// +build integration

package integration

import (
	"os"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/behrlich/go-mtrace"
	"github.com/behrlich/go-mtrace/runtimes/fake"
)

// This suite runs the heavier concurrent scenario end to end: several
// goroutines hammering the tracer concurrently through a real file sink,
// verifying the resulting trace file is well-formed. It is gated behind the
// integration build tag because it writes to disk and takes noticeably
// longer than the unit suite.

func TestConcurrentWritersProduceWellFormedTrace(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/trace.bin"

	rt := fake.NewRuntime()
	instr := fake.NewInstrumentation()
	method := mtrace.MethodRef(4)
	rt.RegisterMethod(method, mtrace.MethodMetadata{ClassDescriptor: "LFoo;", Name: "bar", Signature: "()V", SourceFile: "Foo.java"})

	cfg := mtrace.DefaultConfig()
	cfg.Filename = path
	cfg.BufferSize = 2 << 20

	require.NoError(t, mtrace.Start(cfg, mtrace.Options{Runtime: rt, Instrumentation: instr}))

	const workers = 8
	const eventsPerWorker = 10000

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		tid := mtrace.ThreadID(w + 1)
		rt.RegisterThread(tid, "worker")
		go func(tid mtrace.ThreadID) {
			defer wg.Done()
			// One logical thread per OS thread for the session's duration,
			// matching what Instrumentation must guarantee for thread-cpu
			// deltas to mean anything (see Listener's doc comment).
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			for i := 0; i < eventsPerWorker; i++ {
				instr.MethodEntered(tid, method)
			}
		}(tid)
	}
	wg.Wait()

	require.NoError(t, mtrace.Stop())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "*version")
	assert.Contains(t, string(data), "*end")
	assert.Contains(t, string(data), "data-file-overflow=false")
}
