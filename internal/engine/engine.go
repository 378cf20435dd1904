// Package engine describes the native automation engine (MaaCore) as a set of Go
// interfaces. The cgo binding lives behind the maacore build tag; tests use the
// enginetest fake.
package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable is returned by Open when the binary was built without the
	// maacore build tag.
	ErrUnavailable = errors.New("native engine not linked into this binary")

	// ErrNullHandle is returned when the engine fails to allocate an instance.
	ErrNullHandle = errors.New("engine returned a null handle")

	// ErrRejected is returned when the engine reports failure for a call that
	// only signals success or failure.
	ErrRejected = errors.New("engine rejected the call")
)

// Callback receives every notification the engine emits for an instance. It is
// invoked on a thread owned by the engine and must return promptly. details is
// owned by the callee only for the duration of the call.
type Callback func(kind int32, details []byte, token uint64)

// Engine is the process-wide part of the native API.
type Engine interface {
	SetUserDir(path string) error
	LoadResource(path string) error
	Version() string

	// Create allocates a new instance whose notifications are delivered to cb
	// together with token.
	Create(token uint64, cb Callback) (Instance, error)
}

// Instance is a single engine handle. Only Destroy releases it.
type Instance interface {
	SetOption(key OptionKey, value string) error

	// AsyncConnect starts a device connection and returns the async call id
	// that the matching AsyncCallInfo notification will carry. A zero id means
	// the engine refused the request.
	AsyncConnect(adbPath, address, config string, block bool) (int32, error)

	// AppendTask queues a task and returns its id. A zero id means the engine
	// refused the task.
	AppendTask(kind string, params []byte) (int32, error)

	Start() error
	Stop() error
	Running() bool
	Destroy()
}

// OptionKey identifies an instance option.
type OptionKey int32

const (
	OptionTouchMode           OptionKey = 2
	OptionDeploymentWithPause OptionKey = 3
	OptionAdbLiteEnabled      OptionKey = 4
	OptionKillAdbOnExit       OptionKey = 5
)

func (k OptionKey) String() string {
	switch k {
	case OptionTouchMode:
		return "TouchMode"
	case OptionDeploymentWithPause:
		return "DeploymentWithPause"
	case OptionAdbLiteEnabled:
		return "AdbLiteEnabled"
	case OptionKillAdbOnExit:
		return "KillAdbOnExit"
	default:
		return fmt.Sprintf("OptionKey(%d)", int32(k))
	}
}

// Rejected wraps ErrRejected with the name of the failing call.
func Rejected(call string) error {
	return fmt.Errorf("%s: %w", call, ErrRejected)
}
