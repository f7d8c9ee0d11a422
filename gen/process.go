package gen

import (
	"time"
)

// ProcessOptions configures a process on spawn.
type ProcessOptions struct {
	// Name registers the process under the given name. Empty means unnamed.
	Name string
	// InitialState is the state passed to the first invocation of a stateful
	// handler. Must be nil for stateless processes.
	InitialState any
	// Context overrides the default execution context: the shared concurrent
	// context for stateless processes and a dedicated serial context for
	// stateful ones.
	Context ExecutionContext
}

// Process is a read-only handle of a registered process.
type Process interface {
	PID() Pid
	// Name returns the registered name or an empty string.
	Name() string
	Kind() ProcessKind
	// State returns the state written back by the last completed invocation.
	// Always nil for stateless processes.
	State() any
	// Continue returns the continue flag returned by the last completed
	// invocation of a stateful handler. It is true for stateless processes.
	Continue() bool
	Context() ExecutionContext
	Info() ProcessInfo
}

// ProcessInfo is a snapshot of the process details.
type ProcessInfo struct {
	PID      Pid
	Name     string
	Kind     ProcessKind
	Continue bool
	// MessagesIn is the number of messages accepted for processing.
	MessagesIn uint64
	// Panics is the number of handler invocations terminated by panic.
	Panics uint64
	Uptime time.Duration
}
