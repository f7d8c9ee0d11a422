package node

import (
	"math"

	"go.uber.org/atomic"

	"github.com/lwproc/lwproc/gen"
)

// pidAllocator hands out (serial, creation) pairs. Both values live in one
// 64-bit word (creation in the high half), so every allocation is a single
// compare-and-swap and no two callers can observe the same counter value.
type pidAllocator struct {
	id   uint32
	word atomic.Uint64
}

func newPidAllocator(id uint32, creation uint32) *pidAllocator {
	a := &pidAllocator{id: id}
	a.reset(0, creation)
	return a
}

// next advances the counter and returns the new value. The serial never takes
// the value math.MaxUint32: the increment that would reach it rolls the serial
// over to 0 and advances the creation.
func (a *pidAllocator) next() (serial uint32, creation uint32) {
	for {
		old := a.word.Load()
		serial, creation = uint32(old), uint32(old>>32)
		if serial >= math.MaxUint32-1 {
			serial = 0
			creation++
		} else {
			serial++
		}
		if a.word.CompareAndSwap(old, uint64(creation)<<32|uint64(serial)) {
			return serial, creation
		}
	}
}

func (a *pidAllocator) newPid() gen.Pid {
	serial, creation := a.next()
	return gen.Pid{
		ID:       a.id,
		Serial:   serial,
		Creation: creation,
	}
}

func (a *pidAllocator) reset(serial uint32, creation uint32) {
	a.word.Store(uint64(creation)<<32 | uint64(serial))
}
