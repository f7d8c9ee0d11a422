package node

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/lwproc/lwproc/gen"
)

type process struct {
	node *node
	pid  gen.Pid
	name atomic.String

	handler gen.Handler
	context gen.ExecutionContext
	created time.Time

	// stateful only. written back by the invocation in the process context,
	// the lock is held for the external readers.
	mutexState sync.RWMutex
	state      any

	cont       atomic.Bool
	messagesIn atomic.Uint64
	panics     atomic.Uint64
}

// gen.Process implementation

func (p *process) PID() gen.Pid {
	return p.pid
}

func (p *process) Name() string {
	return p.name.Load()
}

func (p *process) Kind() gen.ProcessKind {
	return p.handler.Kind()
}

func (p *process) State() any {
	p.mutexState.RLock()
	defer p.mutexState.RUnlock()
	return p.state
}

func (p *process) Continue() bool {
	return p.cont.Load()
}

func (p *process) Context() gen.ExecutionContext {
	return p.context
}

func (p *process) Info() gen.ProcessInfo {
	return gen.ProcessInfo{
		PID:        p.pid,
		Name:       p.name.Load(),
		Kind:       p.handler.Kind(),
		Continue:   p.cont.Load(),
		MessagesIn: p.messagesIn.Load(),
		Panics:     p.panics.Load(),
		Uptime:     p.node.clock.Since(p.created),
	}
}

// internal

// deliver schedules the handler invocation in the process context. Returns
// false if the context refused the task.
func (p *process) deliver(message any) bool {
	var task func()

	switch h := p.handler.(type) {
	case gen.StatelessHandler:
		task = func() {
			defer p.recover()
			h(p.pid, message)
		}
	case gen.StatefulHandler:
		task = func() {
			defer p.recover()
			p.invoke(h, message)
		}
	default:
		return false
	}

	if p.context.Dispatch(task) == false {
		return false
	}
	p.messagesIn.Inc()
	return true
}

func (p *process) invoke(h gen.StatefulHandler, message any) {
	p.mutexState.RLock()
	state := p.state
	p.mutexState.RUnlock()

	cont, state := h(p.pid, message, state)

	p.mutexState.Lock()
	p.state = state
	p.mutexState.Unlock()

	p.cont.Store(cont)
	if cont == false {
		p.node.metrics.stops.Inc()
		if ce := p.node.log.Check(zap.DebugLevel, "process asked to be stopped"); ce != nil {
			ce.Write(zap.Stringer("pid", p.pid))
		}
	}
}

func (p *process) recover() {
	rcv := recover()
	if rcv == nil {
		return
	}
	pc, fn, line, _ := runtime.Caller(2)
	p.node.log.Error("handler panic recovered",
		zap.Stringer("pid", p.pid),
		zap.String("name", p.name.Load()),
		zap.String("panic", fmt.Sprintf("%#v", rcv)),
		zap.String("at", fmt.Sprintf("%s[%s:%d]", runtime.FuncForPC(pc).Name(), fn, line)),
	)
	p.panics.Inc()
	p.node.metrics.panics.Inc()
}
