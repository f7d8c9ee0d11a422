package node

import (
	"sync"

	"github.com/lwproc/lwproc/gen"
	"github.com/lwproc/lwproc/lib"
)

// registrar maps Pids to processes and names to Pids. The name index never
// owns a process: a name is removed together with the process it is bound to.
type registrar struct {
	processes lib.Map[gen.Pid, *process]

	names      lib.BiMap[string, gen.Pid]
	mutexNames sync.RWMutex
}

// link registers the process under its Pid and, if given, the name. Either
// both are registered or nothing is.
func (r *registrar) link(p *process, name string) error {
	if name == "" {
		if r.processes.StoreNew(p.pid, p) == false {
			return gen.ErrAlreadyRegistered.GenWithStackByArgs(p.pid)
		}
		return nil
	}

	r.mutexNames.Lock()
	defer r.mutexNames.Unlock()

	if _, taken := r.names.GetB(name); taken {
		return gen.ErrNameTaken.GenWithStackByArgs(name)
	}
	if r.processes.StoreNew(p.pid, p) == false {
		return gen.ErrAlreadyRegistered.GenWithStackByArgs(p.pid)
	}
	r.names.Bind(name, p.pid)
	p.name.Store(name)
	return nil
}

// unlink removes the process together with its name. It holds the name lock,
// so a bound name always refers to a registered process.
func (r *registrar) unlink(pid gen.Pid) (*process, bool) {
	r.mutexNames.Lock()
	defer r.mutexNames.Unlock()

	p, found := r.processes.LoadAndDelete(pid)
	if found == false {
		return nil, false
	}
	if _, bound := r.names.DeleteB(pid); bound {
		p.name.Store("")
	}
	return p, true
}

func (r *registrar) registerName(name string, pid gen.Pid) error {
	if name == "" {
		return gen.ErrIncorrect.GenWithStackByArgs("empty name")
	}

	r.mutexNames.Lock()
	defer r.mutexNames.Unlock()

	p, found := r.processes.Load(pid)
	if found == false {
		return gen.ErrProcessUnknown.GenWithStackByArgs(pid)
	}
	if _, taken := r.names.GetB(name); taken {
		return gen.ErrNameTaken.GenWithStackByArgs(name)
	}
	if current, named := r.names.GetA(pid); named {
		return gen.ErrProcessHasName.GenWithStackByArgs(pid, current)
	}
	r.names.Bind(name, pid)
	p.name.Store(name)
	return nil
}

func (r *registrar) unregisterName(name string) (gen.Pid, error) {
	r.mutexNames.Lock()
	defer r.mutexNames.Unlock()

	pid, found := r.names.DeleteA(name)
	if found == false {
		return pid, gen.ErrNameUnknown.GenWithStackByArgs(name)
	}
	if p, exist := r.processes.Load(pid); exist {
		p.name.Store("")
	}
	return pid, nil
}

func (r *registrar) resolveName(name string) (gen.Pid, bool) {
	r.mutexNames.RLock()
	pid, found := r.names.GetB(name)
	r.mutexNames.RUnlock()
	return pid, found
}

func (r *registrar) processByPid(pid gen.Pid) (*process, bool) {
	return r.processes.Load(pid)
}

func (r *registrar) processByName(name string) (*process, bool) {
	pid, found := r.resolveName(name)
	if found == false {
		return nil, false
	}
	return r.processes.Load(pid)
}

func (r *registrar) pidList() []gen.Pid {
	return r.processes.Keys()
}

func (r *registrar) count() int {
	return r.processes.Len()
}

func (r *registrar) namesCount() int {
	r.mutexNames.RLock()
	defer r.mutexNames.RUnlock()
	return r.names.Len()
}

// reset unregisters everything. Returns the number of removed processes.
func (r *registrar) reset() int {
	r.mutexNames.Lock()
	defer r.mutexNames.Unlock()

	n := r.processes.Len()
	r.processes.Range(func(_ gen.Pid, p *process) bool {
		p.name.Store("")
		return true
	})
	r.processes.Reset()
	r.names.Reset()
	return n
}
