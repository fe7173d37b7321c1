package mtrace

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/behrlich/go-mtrace/internal/clock"
	"github.com/behrlich/go-mtrace/internal/constants"
	"github.com/behrlich/go-mtrace/internal/wire"
)

// finalize computes the session's summary, walks the buffer to find which
// methods were ever visited, builds the textual preamble, and writes
// preamble+buffer to the session's sink. It runs entirely under the
// stop-the-world bracket Stop() already holds: reading the buffer's cursor
// and contents here needs no further synchronization, since no Reserve can
// be concurrently in flight.
func finalize(s *session) error {
	t := s.tracer
	buf := t.buf

	finalOffset := buf.PublishedLen()
	elapsedUs := clock.WallUs() - t.startWallUs
	overheadNs := clock.MeasureOverheadNanos(clockToInternal(t.clockSource))

	if s.cfg.Flags&constants.FlagCountAllocs != 0 {
		s.opts.Runtime.SetStatsEnabled(false)
	}

	recordSize := t.clockSource.RecordSize()
	data := buf.Data()[:finalOffset]
	records := data[constants.HeaderLen:]

	numCalls := 0
	visitedMethods := map[uint32]struct{}{}
	var methodOrder []uint32

	for off := 0; off+recordSize <= len(records); off += recordSize {
		rec := records[off : off+recordSize]
		methodAction := wire.DecodeRecordMethodAction(rec)
		methodID := wire.DecodeMethodID(methodAction)

		numCalls++
		if _, ok := visitedMethods[methodID]; !ok {
			visitedMethods[methodID] = struct{}{}
			methodOrder = append(methodOrder, methodID)
		}
	}

	preamble := buildPreamble(s, buf.Overflowed(), elapsedUs, numCalls, overheadNs, methodOrder)

	var err error
	if s.cfg.DirectToExternalSink {
		err = s.sink.WriteChunked("mtrace", preamble, data)
	} else {
		err = s.sink.WriteFully(append(preamble, data...))
	}
	if err != nil {
		return WrapError("Finalize", CodeSinkWriteFailed, err)
	}
	return nil
}

func clockToInternal(c wire.ClockSource) clock.Source {
	switch c {
	case wire.Wall:
		return clock.SourceWall
	case wire.ThreadCPU:
		return clock.SourceThreadCPU
	default:
		return clock.SourceDual
	}
}

// buildPreamble renders the textual header ART-style trace consumers
// expect before the binary record data: a *version block of key=value
// summary lines, a *threads section, a *methods section doubling as the
// method-id dictionary, and a closing *end marker. The thread list comes
// from the runtime's own thread registry, not from which threads happen to
// appear in the buffer: a live thread that never entered a traced method
// still belongs in *threads.
func buildPreamble(s *session, overflowed bool, elapsedUs uint64, numCalls int, overheadNs uint32, methodOrder []uint32) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "*version\n")
	fmt.Fprintf(&b, "%d\n", s.cfg.ClockSource.HeaderVersion())
	fmt.Fprintf(&b, "data-file-overflow=%s\n", strconv.FormatBool(overflowed))
	fmt.Fprintf(&b, "clock=%s\n", s.cfg.ClockSource)
	fmt.Fprintf(&b, "elapsed-time-usec=%d\n", elapsedUs)
	fmt.Fprintf(&b, "num-method-calls=%d\n", numCalls)
	fmt.Fprintf(&b, "clock-call-overhead-nsec=%d\n", overheadNs)
	fmt.Fprintf(&b, "vm=art\n")

	if s.cfg.Flags&constants.FlagCountAllocs != 0 && s.opts.Runtime != nil {
		fmt.Fprintf(&b, "alloc-count=%d\n", s.opts.Runtime.Stat(StatAllocatedObjects))
		fmt.Fprintf(&b, "alloc-size=%d\n", s.opts.Runtime.Stat(StatAllocatedBytes))
		fmt.Fprintf(&b, "gc-count=%d\n", s.opts.Runtime.Stat(StatGCCount))
	}

	fmt.Fprintf(&b, "*threads\n")
	threads := append([]ThreadInfo(nil), s.opts.Runtime.ThreadList()...)
	sort.Slice(threads, func(i, j int) bool { return threads[i].ID < threads[j].ID })
	for _, ti := range threads {
		fmt.Fprintf(&b, "%d\t%s\n", ti.ID, ti.Name)
	}

	fmt.Fprintf(&b, "*methods\n")
	for _, methodID := range methodOrder {
		md := s.opts.Runtime.MethodMetadata(MethodRef(methodID))
		fmt.Fprintf(&b, "0x%x\t%s\t%s\t%s\t%s\n", methodID, md.ClassDescriptor, md.Name, md.Signature, md.SourceFile)
	}

	fmt.Fprintf(&b, "*end\n")

	return []byte(b.String())
}
