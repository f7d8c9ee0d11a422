package node

import (
	"go.uber.org/atomic"

	"github.com/lwproc/lwproc/gen"
	"github.com/lwproc/lwproc/lib"
)

var concurrent = &concurrentContext{}

// Concurrent returns the process-wide shared execution context. Every task runs
// on its own goroutine; tasks run in parallel and in no particular order.
func Concurrent() gen.ExecutionContext {
	return concurrent
}

type concurrentContext struct{}

func (c *concurrentContext) Dispatch(task func()) bool {
	go task()
	return true
}

func (c *concurrentContext) String() string {
	return "concurrent"
}

const (
	serialSleep   int32 = 0
	serialRunning int32 = 1
)

// Serial is an execution context running its tasks one at a time in the order
// they were dispatched. It owns no goroutine while idle: the first Dispatch
// after a sleep starts a goroutine that drains the queue and exits once it is
// empty.
//
// Every stateful process gets its own Serial by default. Assigning one Serial
// to several processes makes their invocations a single sequence.
type Serial struct {
	queue  *lib.QueueMPSC[func()]
	state  atomic.Int32
	closed atomic.Bool
}

func NewSerial() *Serial {
	return &Serial{
		queue: lib.NewQueueMPSC[func()](),
	}
}

// Dispatch enqueues the task. Tasks must not panic.
func (s *Serial) Dispatch(task func()) bool {
	if s.closed.Load() {
		return false
	}
	s.queue.Push(task)
	s.run()
	return true
}

// Len returns the number of tasks waiting in the queue
func (s *Serial) Len() int64 {
	return s.queue.Len()
}

// Close makes Dispatch refuse new tasks. Tasks enqueued before are still run.
func (s *Serial) Close() {
	s.closed.Store(true)
}

func (s *Serial) String() string {
	return "serial"
}

func (s *Serial) run() {
	if s.state.CompareAndSwap(serialSleep, serialRunning) == false {
		// already running
		return
	}
	go s.drain()
}

func (s *Serial) drain() {
next:
	for {
		task, ok := s.queue.Pop()
		if ok == false {
			break
		}
		task()
	}

	s.state.Store(serialSleep)

	// a producer could have pushed a task after the last Pop but before the
	// state has been changed. its run() call has failed, so pick it up here.
	if s.queue.Empty() {
		return
	}
	if s.state.CompareAndSwap(serialSleep, serialRunning) == false {
		// another goroutine is already running
		return
	}
	goto next
}
