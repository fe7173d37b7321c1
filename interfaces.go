package mtrace

import "github.com/behrlich/go-mtrace/internal/interfaces"

// The public collaborator interfaces are defined in internal/interfaces and
// aliased here so callers outside this module never need to import an
// internal package to implement them.
type (
	ThreadID        = interfaces.ThreadID
	MethodRef       = interfaces.MethodRef
	MethodMetadata  = interfaces.MethodMetadata
	ThreadInfo      = interfaces.ThreadInfo
	StatKind        = interfaces.StatKind
	Runtime         = interfaces.Runtime
	Listener        = interfaces.Listener
	Instrumentation = interfaces.Instrumentation
	Sink            = interfaces.Sink
	Logger          = interfaces.Logger
)

const (
	StatAllocatedObjects = interfaces.StatAllocatedObjects
	StatAllocatedBytes   = interfaces.StatAllocatedBytes
	StatGCCount          = interfaces.StatGCCount
)
