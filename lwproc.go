// Package lwproc is a lightweight-process runtime: processes identified by
// gen.Pid (and optionally by a name) that communicate by asynchronous message
// passing only.
//
// The package-level functions operate on the process-wide default runtime.
// It is started on the first use with zero options, or explicitly by Init.
// Use node.Start to get an independent runtime.
package lwproc

import (
	"sync"

	"github.com/pingcap/errors"

	"github.com/lwproc/lwproc/gen"
	"github.com/lwproc/lwproc/node"
)

var (
	defaultMutex   sync.Mutex
	defaultRuntime gen.Runtime
)

// Init replaces the default runtime with a new one started with the given
// options. The previous default runtime is stopped.
func Init(options gen.RuntimeOptions) error {
	rt, err := node.Start(options)
	if err != nil {
		return errors.Trace(err)
	}

	defaultMutex.Lock()
	prev := defaultRuntime
	defaultRuntime = rt
	defaultMutex.Unlock()

	if prev != nil {
		return errors.Trace(prev.Stop())
	}
	return nil
}

// Default returns the default runtime
func Default() gen.Runtime {
	defaultMutex.Lock()
	defer defaultMutex.Unlock()

	if defaultRuntime == nil {
		rt, err := node.Start(gen.RuntimeOptions{})
		if err != nil {
			// zero options are always valid
			panic(err)
		}
		defaultRuntime = rt
	}
	return defaultRuntime
}

// Reset clears the registry of the default runtime and reinitializes its
// Pid allocator. Intended for tests.
func Reset() {
	Default().Reset()
}

// Spawn spawns a process in the default runtime
func Spawn(handler gen.Handler, options gen.ProcessOptions) (gen.Pid, error) {
	return Default().Spawn(handler, options)
}

// SpawnStateless spawns a stateless process in the default runtime
func SpawnStateless(handler func(pid gen.Pid, message any), options gen.ProcessOptions) (gen.Pid, error) {
	return Default().Spawn(gen.StatelessHandler(handler), options)
}

// SpawnStateful spawns a stateful process with the state of type S in the
// default runtime. The initial value overrides options.InitialState.
func SpawnStateful[S any](initial S, handler func(pid gen.Pid, message any, state S) (bool, S), options gen.ProcessOptions) (gen.Pid, error) {
	return SpawnStatefulIn(Default(), initial, handler, options)
}

// SpawnStatefulIn spawns a stateful process with the state of type S in the
// given runtime.
func SpawnStatefulIn[S any](rt gen.Runtime, initial S, handler func(pid gen.Pid, message any, state S) (bool, S), options gen.ProcessOptions) (gen.Pid, error) {
	if handler == nil {
		return rt.Spawn(gen.StatefulHandler(nil), options)
	}
	options.InitialState = initial
	h := func(pid gen.Pid, message any, state any) (bool, any) {
		s, _ := state.(S)
		return handler(pid, message, s)
	}
	return rt.Spawn(gen.StatefulHandler(h), options)
}

// Send sends a message to the process with the given Pid or name in the
// default runtime. Never fails: unknown targets are ignored.
func Send(to any, message any) {
	Default().Send(to, message)
}

func PidList() []gen.Pid {
	return Default().PidList()
}

func ProcessByPid(pid gen.Pid) (gen.Process, bool) {
	return Default().ProcessByPid(pid)
}

func ProcessByName(name string) (gen.Process, bool) {
	return Default().ProcessByName(name)
}

func Unlink(pid gen.Pid) {
	Default().Unlink(pid)
}
