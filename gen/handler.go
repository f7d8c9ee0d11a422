package gen

// ProcessKind names the behavior variant of a process.
type ProcessKind int32

const (
	KindStateless ProcessKind = 1
	KindStateful  ProcessKind = 2
)

func (k ProcessKind) String() string {
	switch k {
	case KindStateless:
		return "stateless"
	case KindStateful:
		return "stateful"
	}
	return "unknown"
}

// Handler is the behavior of a process. It is either StatelessHandler or
// StatefulHandler; no other implementations are possible.
type Handler interface {
	Kind() ProcessKind
	handler()
}

// StatelessHandler handles a message without any state kept between calls.
// Messages sent to the same stateless process may be handled concurrently and
// in any order.
type StatelessHandler func(pid Pid, message any)

func (StatelessHandler) Kind() ProcessKind { return KindStateless }
func (StatelessHandler) handler()          {}

// StatefulHandler handles a message against the process state and returns the
// new state. Calls are sequential within the process execution context, so
// the state is exclusively owned by the handler for the duration of the call.
//
// The returned bool is the continue flag. false asks a supervising layer to stop
// the process; the runtime only records it.
type StatefulHandler func(pid Pid, message any, state any) (bool, any)

func (StatefulHandler) Kind() ProcessKind { return KindStateful }
func (StatefulHandler) handler()          {}

// ExecutionContext runs the handler invocations of the processes assigned to it.
type ExecutionContext interface {
	// Dispatch schedules the task. Returns false if the context is closed and
	// the task has been dropped. It never waits for the task to complete.
	Dispatch(task func()) bool
}
