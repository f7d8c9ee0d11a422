package gen

import (
	"fmt"

	"github.com/pingcap/errors"
)

var (
	ErrAlreadyRegistered = errors.Normalize(
		"process %s is already registered",
		errors.RFCCodeText("LWP:ErrAlreadyRegistered"),
	)
	ErrNameTaken = errors.Normalize(
		"name %q is already registered",
		errors.RFCCodeText("LWP:ErrNameTaken"),
	)
	ErrProcessHasName = errors.Normalize(
		"process %s already has the registered name %q",
		errors.RFCCodeText("LWP:ErrProcessHasName"),
	)
	ErrNameUnknown = errors.Normalize(
		"unknown name %q",
		errors.RFCCodeText("LWP:ErrNameUnknown"),
	)
	ErrProcessUnknown = errors.Normalize(
		"unknown process %s",
		errors.RFCCodeText("LWP:ErrProcessUnknown"),
	)
	ErrIncorrect = errors.Normalize(
		"incorrect value or argument: %s",
		errors.RFCCodeText("LWP:ErrIncorrect"),
	)
	ErrRuntimeStopped = errors.Normalize(
		"runtime %s is stopped",
		errors.RFCCodeText("LWP:ErrRuntimeStopped"),
	)
)

// SpawnError is returned by Runtime.Spawn. Nothing spawned by the failed call
// stays registered. Use errors.Cause or one of the normalized errors' Equal
// method to get the reason.
type SpawnError struct {
	// Pid is the identifier that was reserved for the process. It is zero if
	// the call failed before the allocation. A reserved Pid is never reused.
	Pid    Pid
	Name   string
	Reason error
}

func (e *SpawnError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unable to spawn process %s (name %q): %s", e.Pid, e.Name, e.Reason)
	}
	return fmt.Sprintf("unable to spawn process %s: %s", e.Pid, e.Reason)
}

func (e *SpawnError) Cause() error {
	return e.Reason
}

func (e *SpawnError) Unwrap() error {
	return e.Reason
}
