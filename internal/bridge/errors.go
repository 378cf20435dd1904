package bridge

import (
	"errors"
	"fmt"

	"github.com/foxwhite25/maabridge/internal/resource"
)

var (
	// ErrItemIndexMissing is returned by Build when the resources have no item index.
	ErrItemIndexMissing = resource.ErrItemIndexMissing

	// ErrOptionRejected is returned by Build when the engine refuses an instance option.
	ErrOptionRejected = errors.New("instance option rejected")

	// ErrAdbNotFound is returned when no adb path was configured and none is on PATH.
	ErrAdbNotFound = errors.New("adb executable not found")

	// ErrConnectRejected is returned when the engine refuses to start connecting.
	ErrConnectRejected = errors.New("engine refused to connect")

	// ErrConnectFailed is returned when the engine reports the connection failed.
	ErrConnectFailed = errors.New("failed to connect")

	// ErrDestroyed is returned by operations on a destroyed Connection.
	ErrDestroyed = errors.New("connection destroyed")
)

// ResultError is returned when an async call completed with a result of an
// unexpected shape.
type ResultError struct {
	CallID int32
	Value  any
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("async call %d returned unexpected result %v (%T)", e.CallID, e.Value, e.Value)
}
