package gen

import (
	"fmt"
)

// Pid identifies a process. It is a comparable value and can be used as a map key.
//
// ID is the node slot and is always 0 within a single runtime. Serial is
// unique within one Creation epoch; Creation is advanced every time Serial
// rolls over.
type Pid struct {
	ID       uint32
	Serial   uint32
	Creation uint32
}

func (p Pid) String() string {
	return fmt.Sprintf("<%d.%d.%d>", p.ID, p.Serial, p.Creation)
}

// IsZero reports whether p is the zero value. Failed spawns return the zero
// Pid, but a runtime with NodeID 0 also allocates it once after the creation
// wraps around, so check the error rather than IsZero.
func (p Pid) IsZero() bool {
	return p == Pid{}
}
