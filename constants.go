package mtrace

import (
	"github.com/behrlich/go-mtrace/internal/constants"
	"github.com/behrlich/go-mtrace/internal/wire"
)

// Re-export constants and the clock-source type for the public API.
const (
	HeaderLen          = constants.HeaderLen
	DefaultBufferSize  = constants.DefaultBufferSize
	FlagCountAllocs    = constants.FlagCountAllocs
	VersionSingleClock = constants.VersionSingleClock
	VersionDualClock   = constants.VersionDualClock
)

// ClockSource selects which timestamp deltas a session records.
type ClockSource = wire.ClockSource

const (
	ClockWall      = wire.Wall
	ClockThreadCPU = wire.ThreadCPU
	ClockDual      = wire.Dual
)
