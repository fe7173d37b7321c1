// Command mtrace-demo drives a trace session against an in-process fake
// runtime, logging a handful of synthetic method calls across several
// goroutines standing in for runtime threads, then stops the session and
// writes a trace file you can inspect by hand.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/behrlich/go-mtrace"
	"github.com/behrlich/go-mtrace/internal/constants"
	"github.com/behrlich/go-mtrace/internal/logging"
	"github.com/behrlich/go-mtrace/runtimes/fake"
)

func main() {
	var (
		out       = flag.String("out", "trace.bin", "output trace file path")
		verbose   = flag.Bool("v", false, "verbose output")
		workers   = flag.Int("workers", 4, "number of goroutines simulating runtime threads")
		calls     = flag.Int("calls", 2000, "method calls per worker")
		clockFlag = flag.String("clock", "dual", "clock source: wall, thread-cpu, or dual")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	clockSource, err := parseClock(*clockFlag)
	if err != nil {
		log.Fatalf("invalid -clock %q: %v", *clockFlag, err)
	}

	rt := fake.NewRuntime()
	instr := fake.NewInstrumentation()

	methodA := mtrace.MethodRef(4)
	methodB := mtrace.MethodRef(8)
	rt.RegisterMethod(methodA, mtrace.MethodMetadata{
		ClassDescriptor: "Lcom/example/Greeter;",
		Name:            "greet",
		Signature:       "()V",
		SourceFile:      "Greeter.java",
	})
	rt.RegisterMethod(methodB, mtrace.MethodMetadata{
		ClassDescriptor: "Lcom/example/Greeter;",
		Name:            "formatName",
		Signature:       "(Ljava/lang/String;)Ljava/lang/String;",
		SourceFile:      "Greeter.java",
	})

	cfg := mtrace.DefaultConfig()
	cfg.ClockSource = clockSource
	cfg.Filename = *out

	opts := mtrace.Options{
		Logger:          logger,
		Runtime:         rt,
		Instrumentation: instr,
	}

	if err := mtrace.Start(cfg, opts); err != nil {
		log.Fatalf("start: %v", err)
	}

	logger.Info(fmt.Sprintf("tracing %d workers x %d calls, clock=%s", *workers, *calls, clockSource))

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, winding down workers early")
		cancel()
	}()

	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		tid := mtrace.ThreadID(w + 1)
		rt.RegisterThread(tid, fmt.Sprintf("worker-%d", w))
		go func(tid mtrace.ThreadID) {
			defer wg.Done()
			// Pin for the lifetime of this logical thread: the tracer reads
			// CLOCK_THREAD_CPUTIME_ID per event and keys its running base on
			// tid, so this goroutine must stay on one OS thread for that to
			// mean anything.
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			for i := 0; i < *calls; i++ {
				select {
				case <-ctx.Done():
					return
				default:
				}
				instr.MethodEntered(tid, methodA)
				instr.MethodEntered(tid, methodB)
				instr.MethodExited(tid, methodB)
				instr.MethodExited(tid, methodA)
				rt.IncrStat(mtrace.StatAllocatedObjects, 1)
			}
		}(tid)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		select {
		case <-done:
		case <-time.After(constants.DemoShutdownGrace):
			logger.Warn("workers did not finish within the shutdown grace period, stopping anyway")
		}
	}
	cancel()
	signal.Stop(sigCh)

	if err := mtrace.Stop(); err != nil {
		log.Fatalf("stop: %v", err)
	}

	info, err := os.Stat(*out)
	if err != nil {
		log.Fatalf("stat output: %v", err)
	}
	fmt.Printf("wrote trace: %s (%d bytes)\n", *out, info.Size())
}

func parseClock(s string) (mtrace.ClockSource, error) {
	switch s {
	case "wall":
		return mtrace.ClockWall, nil
	case "thread-cpu":
		return mtrace.ClockThreadCPU, nil
	case "dual":
		return mtrace.ClockDual, nil
	default:
		return 0, fmt.Errorf("unknown clock source %q", s)
	}
}
