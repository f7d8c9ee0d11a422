package gen

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

type Version struct {
	Name    string
	Release string
	License string
}

func (v Version) String() string {
	return v.Name + ":" + v.Release
}

// RuntimeOptions configures a runtime. The zero value is valid.
type RuntimeOptions struct {
	// Name is used in the log records and metric labels.
	Name string `toml:"name"`
	// NodeID is the node slot of every allocated Pid.
	NodeID uint32 `toml:"node-id"`
	// Creation is the initial creation epoch of the Pid allocator.
	Creation uint32 `toml:"creation"`
	// PoolSize enables a fixed pool of workers of the given size to be used as
	// the default execution context of stateless processes. With 0 every
	// stateless invocation runs on its own goroutine.
	PoolSize int `toml:"pool-size"`

	Logger *zap.Logger `toml:"-"`
	Clock  clock.Clock `toml:"-"`
}

// Runtime spawns processes and delivers messages to them. All methods are safe
// for concurrent use.
type Runtime interface {
	// ID returns the unique identifier of this runtime instance
	ID() string
	Name() string
	IsAlive() bool

	// Spawn creates a process, registers it and returns its Pid. On failure
	// the returned error is *SpawnError.
	Spawn(handler Handler, options ProcessOptions) (Pid, error)
	// Link registers a process under the given Pid. Returns ErrAlreadyRegistered
	// if the Pid is taken, ErrNameTaken if options.Name is bound.
	Link(pid Pid, handler Handler, options ProcessOptions) error
	// Unlink removes the process and its name. Does nothing if the Pid
	// is unknown.
	Unlink(pid Pid)

	// Send delivers a message asynchronously. The target is Pid or the
	// registered name (string). Sending to an unknown target does nothing.
	Send(to any, message any)
	SendPid(to Pid, message any)
	SendName(to string, message any)

	RegisterName(name string, pid Pid) error
	UnregisterName(name string) (Pid, error)
	ResolveName(name string) (Pid, bool)

	ProcessByPid(pid Pid) (Process, bool)
	ProcessByName(name string) (Process, bool)
	ProcessInfo(pid Pid) (ProcessInfo, error)
	// PidList returns a snapshot of the registered Pids
	PidList() []Pid

	// Reset unregisters all processes and reinitializes the Pid allocator.
	Reset()
	// Stop stops the runtime. Processes are unregistered, messages are no
	// longer accepted.
	Stop() error
}
