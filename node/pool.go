package node

import (
	"sync"

	"github.com/pingcap/errors"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/lwproc/lwproc/gen"
)

// Pool is an execution context backed by a fixed number of worker goroutines.
// Tasks are spread across the workers round-robin, so they run in parallel and
// in no particular order. Dispatch never blocks: a task that finds the chosen
// worker's input queue full runs on its own goroutine instead.
type Pool struct {
	workers  []*poolWorker
	next     atomic.Uint32
	overflow atomic.Uint64

	// guards closing of the worker queues against concurrent Dispatch calls
	mutex  sync.RWMutex
	closed bool

	group errgroup.Group
}

type poolWorker struct {
	inputCh chan func()
}

// NewPool starts a pool with the given number of workers.
func NewPool(size int) (*Pool, error) {
	if size < 1 {
		return nil, gen.ErrIncorrect.GenWithStackByArgs("pool size must be greater than zero")
	}

	p := &Pool{
		workers: make([]*poolWorker, size),
	}
	for i := range p.workers {
		worker := &poolWorker{inputCh: make(chan func(), gen.DefaultPoolQueueSize)}
		p.workers[i] = worker
		p.group.Go(func() error {
			worker.run()
			return nil
		})
	}
	return p, nil
}

func (p *Pool) Dispatch(task func()) bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	if p.closed {
		return false
	}
	worker := p.workers[p.next.Inc()%uint32(len(p.workers))]
	select {
	case worker.inputCh <- task:
	default:
		// the worker may be the caller itself, so waiting for room could
		// never end. Close still waits for the overflow task.
		p.overflow.Inc()
		p.group.Go(func() error {
			task()
			return nil
		})
	}
	return true
}

// Overflowed returns the number of tasks that ran outside the workers
// because the input queue was full.
func (p *Pool) Overflowed() uint64 {
	return p.overflow.Load()
}

// Size returns the number of workers
func (p *Pool) Size() int {
	return len(p.workers)
}

// Close stops accepting tasks and waits for the workers to run the tasks
// that have already been dispatched.
func (p *Pool) Close() error {
	p.mutex.Lock()
	if p.closed {
		p.mutex.Unlock()
		return nil
	}
	p.closed = true
	for _, worker := range p.workers {
		close(worker.inputCh)
	}
	p.mutex.Unlock()

	return errors.Trace(p.group.Wait())
}

func (p *Pool) String() string {
	return "pool"
}

func (w *poolWorker) run() {
	for task := range w.inputCh {
		task()
	}
}
