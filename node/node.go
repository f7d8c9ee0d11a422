package node

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pingcap/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/lwproc/lwproc/gen"
)

type node struct {
	id      string
	name    string
	options gen.RuntimeOptions

	log     *zap.Logger
	clock   clock.Clock
	metrics *runtimeMetrics

	allocator *pidAllocator
	registrar registrar

	// default context of the stateless processes
	shared gen.ExecutionContext
	pool   *Pool

	alive atomic.Bool
}

// Start starts a new runtime.
func Start(options gen.RuntimeOptions) (gen.Runtime, error) {
	if options.PoolSize < 0 {
		return nil, gen.ErrIncorrect.GenWithStackByArgs("negative pool size")
	}
	if options.Name == "" {
		options.Name = gen.DefaultRuntimeName
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Clock == nil {
		options.Clock = clock.New()
	}

	id := uuid.NewString()
	n := &node{
		id:        id,
		name:      options.Name,
		options:   options,
		clock:     options.Clock,
		metrics:   newRuntimeMetrics(options.Name, id),
		allocator: newPidAllocator(options.NodeID, options.Creation),
		shared:    Concurrent(),
	}
	n.log = options.Logger.Named("lwproc").With(
		zap.String("runtime", n.name),
		zap.String("id", n.id),
	)

	if options.PoolSize > 0 {
		pool, err := NewPool(options.PoolSize)
		if err != nil {
			return nil, errors.Trace(err)
		}
		n.pool = pool
		n.shared = pool
	}

	n.alive.Store(true)
	n.log.Info("runtime started",
		zap.Uint32("node-id", options.NodeID),
		zap.Uint32("creation", options.Creation),
		zap.Int("pool-size", options.PoolSize),
	)
	return n, nil
}

// gen.Runtime implementation

func (n *node) ID() string {
	return n.id
}

func (n *node) Name() string {
	return n.name
}

func (n *node) IsAlive() bool {
	return n.alive.Load()
}

func (n *node) Spawn(handler gen.Handler, options gen.ProcessOptions) (gen.Pid, error) {
	if n.alive.Load() == false {
		return gen.Pid{}, &gen.SpawnError{
			Name:   options.Name,
			Reason: gen.ErrRuntimeStopped.GenWithStackByArgs(n.name),
		}
	}
	if err := validateProcess(handler, options); err != nil {
		return gen.Pid{}, &gen.SpawnError{Name: options.Name, Reason: err}
	}

	// the Pid is lost if linking fails. it is never handed out again, so the
	// uniqueness holds anyway.
	pid := n.allocator.newPid()
	if err := n.link(pid, handler, options); err != nil {
		return gen.Pid{}, &gen.SpawnError{Pid: pid, Name: options.Name, Reason: err}
	}
	n.metrics.spawned(handler.Kind())
	return pid, nil
}

func (n *node) Link(pid gen.Pid, handler gen.Handler, options gen.ProcessOptions) error {
	if n.alive.Load() == false {
		return gen.ErrRuntimeStopped.GenWithStackByArgs(n.name)
	}
	if err := validateProcess(handler, options); err != nil {
		return err
	}
	return n.link(pid, handler, options)
}

func (n *node) Unlink(pid gen.Pid) {
	p, found := n.registrar.unlink(pid)
	if found == false {
		return
	}
	n.metrics.registered.Dec()
	if ce := n.log.Check(zap.DebugLevel, "process unlinked"); ce != nil {
		ce.Write(zap.Stringer("pid", pid), zap.Stringer("kind", p.Kind()))
	}
}

func (n *node) Send(to any, message any) {
	switch t := to.(type) {
	case gen.Pid:
		n.SendPid(t, message)
	case string:
		n.SendName(t, message)
	default:
		n.metrics.dropped.Inc()
		if ce := n.log.Check(zap.DebugLevel, "unsupported target type, message dropped"); ce != nil {
			ce.Write(zap.String("type", fmt.Sprintf("%T", to)))
		}
	}
}

func (n *node) SendPid(to gen.Pid, message any) {
	p, found := n.registrar.processByPid(to)
	if found == false {
		n.metrics.dropped.Inc()
		if ce := n.log.Check(zap.DebugLevel, "unknown process, message dropped"); ce != nil {
			ce.Write(zap.Stringer("to", to))
		}
		return
	}
	if p.deliver(message) == false {
		n.metrics.dropped.Inc()
		if ce := n.log.Check(zap.DebugLevel, "execution context is closed, message dropped"); ce != nil {
			ce.Write(zap.Stringer("to", to))
		}
		return
	}
	n.metrics.sent(p.Kind())
}

func (n *node) SendName(to string, message any) {
	pid, found := n.registrar.resolveName(to)
	if found == false {
		n.metrics.dropped.Inc()
		if ce := n.log.Check(zap.DebugLevel, "unknown name, message dropped"); ce != nil {
			ce.Write(zap.String("to", to))
		}
		return
	}
	n.SendPid(pid, message)
}

func (n *node) RegisterName(name string, pid gen.Pid) error {
	if err := n.registrar.registerName(name, pid); err != nil {
		return err
	}
	n.log.Debug("name registered", zap.String("name", name), zap.Stringer("pid", pid))
	return nil
}

func (n *node) UnregisterName(name string) (gen.Pid, error) {
	pid, err := n.registrar.unregisterName(name)
	if err != nil {
		return pid, err
	}
	n.log.Debug("name unregistered", zap.String("name", name), zap.Stringer("pid", pid))
	return pid, nil
}

func (n *node) ResolveName(name string) (gen.Pid, bool) {
	return n.registrar.resolveName(name)
}

func (n *node) ProcessByPid(pid gen.Pid) (gen.Process, bool) {
	p, found := n.registrar.processByPid(pid)
	if found == false {
		return nil, false
	}
	return p, true
}

func (n *node) ProcessByName(name string) (gen.Process, bool) {
	p, found := n.registrar.processByName(name)
	if found == false {
		return nil, false
	}
	return p, true
}

func (n *node) ProcessInfo(pid gen.Pid) (gen.ProcessInfo, error) {
	p, found := n.registrar.processByPid(pid)
	if found == false {
		return gen.ProcessInfo{}, gen.ErrProcessUnknown.GenWithStackByArgs(pid)
	}
	return p.Info(), nil
}

func (n *node) PidList() []gen.Pid {
	return n.registrar.pidList()
}

func (n *node) Reset() {
	removed := n.registrar.reset()
	n.allocator.reset(0, n.options.Creation)
	n.metrics.registered.Set(0)
	n.log.Info("runtime reset", zap.Int("unregistered", removed))
}

func (n *node) Stop() error {
	if n.alive.Swap(false) == false {
		return nil
	}

	var err error
	removed := n.registrar.reset()
	if n.pool != nil {
		err = multierr.Append(err, n.pool.Close())
	}
	n.metrics.remove()

	if err != nil {
		n.log.Warn("runtime stopped with error", zap.Int("unregistered", removed), zap.Error(err))
		return errors.Trace(err)
	}
	n.log.Info("runtime stopped", zap.Int("unregistered", removed))
	return nil
}

// internal

func (n *node) link(pid gen.Pid, handler gen.Handler, options gen.ProcessOptions) error {
	p := n.newProcess(pid, handler, options)
	if err := n.registrar.link(p, options.Name); err != nil {
		n.log.Debug("unable to link process",
			zap.Stringer("pid", pid), zap.String("name", options.Name), zap.Error(err))
		return err
	}
	n.metrics.registered.Inc()
	if ce := n.log.Check(zap.DebugLevel, "process linked"); ce != nil {
		ce.Write(zap.Stringer("pid", pid), zap.String("name", options.Name), zap.Stringer("kind", handler.Kind()))
	}
	return nil
}

func (n *node) newProcess(pid gen.Pid, handler gen.Handler, options gen.ProcessOptions) *process {
	p := &process{
		node:    n,
		pid:     pid,
		handler: handler,
		context: options.Context,
		created: n.clock.Now(),
	}
	p.cont.Store(true)

	if handler.Kind() == gen.KindStateful {
		p.state = options.InitialState
		if p.context == nil {
			p.context = NewSerial()
		}
		return p
	}

	if p.context == nil {
		p.context = n.shared
	}
	return p
}

func validateProcess(handler gen.Handler, options gen.ProcessOptions) error {
	switch h := handler.(type) {
	case gen.StatelessHandler:
		if h == nil {
			return gen.ErrIncorrect.GenWithStackByArgs("handler is nil")
		}
		if options.InitialState != nil {
			return gen.ErrIncorrect.GenWithStackByArgs("stateless process can't have a state")
		}
	case gen.StatefulHandler:
		if h == nil {
			return gen.ErrIncorrect.GenWithStackByArgs("handler is nil")
		}
	default:
		return gen.ErrIncorrect.GenWithStackByArgs("handler is nil")
	}
	return nil
}
