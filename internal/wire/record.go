package wire

import (
	"fmt"

	"github.com/behrlich/go-mtrace/internal/constants"
)

// ClockSource selects which timestamp deltas a session records. It is the
// single value that governs header version, record size, and record field
// order.
type ClockSource int

const (
	// Wall records only a wall-clock delta per event.
	Wall ClockSource = iota
	// ThreadCPU records only a per-thread CPU-time delta per event.
	ThreadCPU
	// Dual records both deltas per event.
	Dual
)

// String renders the clock source the way the textual preamble's "clock="
// line expects it.
func (c ClockSource) String() string {
	switch c {
	case Wall:
		return "wall"
	case ThreadCPU:
		return "thread-cpu"
	case Dual:
		return "dual"
	default:
		return "unknown"
	}
}

// HeaderVersion returns the trace format version a session using this clock
// source must declare.
func (c ClockSource) HeaderVersion() uint16 {
	if c == Dual {
		return constants.VersionDualClock
	}
	return constants.VersionSingleClock
}

// RecordSize returns the fixed per-event record size, in bytes, for this
// clock source.
func (c ClockSource) RecordSize() int {
	if c == Dual {
		return constants.RecordSizeDualClock
	}
	return constants.RecordSizeSingleClock
}

// Action identifies which instrumentation event a record represents.
type Action uint8

const (
	ActionEnter           Action = constants.ActionEnter
	ActionExit            Action = constants.ActionExit
	ActionUnwindException Action = constants.ActionUnwindException
)

// EncodeMethodAction packs a 4-byte-aligned method reference and a 2-bit
// action into a single u32: the method reference occupies the high 30
// bits, the action the low 2. It panics if methodRef is not 4-byte aligned
// or if action is not one of the three defined actions — both are
// programming defects in the caller (the instrumentation subsystem is
// contractually required to hand back aligned refs), not runtime
// conditions the hot path should tolerate.
func EncodeMethodAction(methodRef uint32, action Action) uint32 {
	if methodRef&constants.ActionMask != 0 {
		panic(fmt.Sprintf("wire: method ref %#x is not 4-byte aligned", methodRef))
	}
	if action > ActionUnwindException {
		panic(fmt.Sprintf("wire: unknown action %d", action))
	}
	return methodRef | uint32(action)
}

// DecodeMethodID extracts the method reference from a packed method_action
// value.
func DecodeMethodID(packed uint32) uint32 {
	return packed &^ constants.ActionMask
}

// DecodeAction extracts the action from a packed method_action value.
func DecodeAction(packed uint32) Action {
	return Action(packed & constants.ActionMask)
}

// EncodeRecord writes one event record into dst[0:clock.RecordSize()] in
// the field order clock dictates. dtCPU/dtWall are ignored when the clock
// source doesn't carry that field. Like the rest of this package, it
// performs no bounds checking — callers reserve exactly RecordSize(clock)
// bytes before calling this.
func EncodeRecord(dst []byte, clock ClockSource, tid uint16, methodAction uint32, dtCPU, dtWall uint32) {
	PutUint16LE(dst[0:2], tid)
	PutUint32LE(dst[2:6], methodAction)
	switch clock {
	case Wall:
		PutUint32LE(dst[6:10], dtWall)
	case ThreadCPU:
		PutUint32LE(dst[6:10], dtCPU)
	case Dual:
		PutUint32LE(dst[6:10], dtCPU)
		PutUint32LE(dst[10:14], dtWall)
	}
}

// DecodeRecordTID reads just the thread-id field of a record; offset 0,
// width 2, regardless of clock source.
func DecodeRecordTID(src []byte) uint16 {
	return Uint16LE(src[0:2])
}

// DecodeRecordMethodAction reads the packed method_action field of a
// record; offset 2, width 4, regardless of clock source.
func DecodeRecordMethodAction(src []byte) uint32 {
	return Uint32LE(src[2:6])
}

// Header is the fixed 32-byte prologue of a trace file.
type Header struct {
	Version      uint16
	StartTimeUs  uint64
	ClockSource  ClockSource
	RecordSize16 uint16 // only meaningful/emitted for VersionDualClock
}

// Encode writes the header into dst[0:constants.HeaderLen]. Fields beyond
// offset 16 are zero-filled for VersionSingleClock sessions, matching how
// the format reserves but does not use the record-size field below version
// 3.
func (h Header) Encode(dst []byte) {
	for i := range dst[:constants.HeaderLen] {
		dst[i] = 0
	}
	PutUint32LE(dst[0:4], constants.Magic)
	PutUint16LE(dst[4:6], h.Version)
	PutUint16LE(dst[6:8], constants.OffsetToData)
	PutUint64LE(dst[8:16], h.StartTimeUs)
	if h.Version >= constants.VersionDualClock {
		PutUint16LE(dst[16:18], uint16(h.ClockSource.RecordSize()))
	}
}

// DecodeHeader reads a Header back out of src[0:constants.HeaderLen].
func DecodeHeader(src []byte) (Header, error) {
	if len(src) < constants.HeaderLen {
		return Header{}, fmt.Errorf("wire: header needs %d bytes, got %d", constants.HeaderLen, len(src))
	}
	magic := Uint32LE(src[0:4])
	if magic != constants.Magic {
		return Header{}, fmt.Errorf("wire: bad magic %#x", magic)
	}
	h := Header{
		Version:     Uint16LE(src[4:6]),
		StartTimeUs: Uint64LE(src[8:16]),
	}
	if h.Version >= constants.VersionDualClock {
		h.RecordSize16 = Uint16LE(src[16:18])
		h.ClockSource = Dual
	}
	return h, nil
}
