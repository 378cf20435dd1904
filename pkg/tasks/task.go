// Package tasks builds the task parameters accepted by the engine.
//
// A task goes through two stages. While Configurable it is a plain value whose
// setters return an updated copy. Appending it to an engine (or calling Start)
// turns it into a Submitted task, which has frozen parameters and no setters.
// Nothing accepts a Submitted task for appending, so a task cannot be queued
// twice or changed after it was queued.
package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Task names understood by the engine.
const (
	KindStartUp   = "StartUp"
	KindFight     = "Fight"
	KindRecruit   = "Recruit"
	KindMall      = "Mall"
	KindRogueLike = "Roguelike"
	KindAward     = "Award"
	KindCloseDown = "CloseDown"
)

// ErrAppendRejected is returned when the engine refuses a task.
var ErrAppendRejected = errors.New("engine rejected task")

// Task is anything that has an engine task name and JSON parameters.
type Task interface {
	Name() string
	json.Marshaler
}

// Configurable is a task that can still be configured and appended.
type Configurable interface {
	Task
	// Start freezes the task without appending it.
	Start() Submitted
}

// Appender queues a task and returns the engine task id.
type Appender interface {
	AppendTask(kind string, params []byte) (int32, error)
}

// Submitted is a task whose parameters are frozen.
type Submitted struct {
	name   string
	params json.RawMessage
	id     int32
}

// Name returns the engine task name.
func (s Submitted) Name() string {
	return s.name
}

// MarshalJSON returns the frozen parameters.
func (s Submitted) MarshalJSON() ([]byte, error) {
	if s.params == nil {
		return []byte("{}"), nil
	}
	return append([]byte(nil), s.params...), nil
}

// ID returns the engine task id. ok is false for tasks frozen by Start.
func (s Submitted) ID() (id int32, ok bool) {
	return s.id, s.id != 0
}

func (s Submitted) String() string {
	if s.id != 0 {
		return fmt.Sprintf("%s#%d", s.name, s.id)
	}
	return s.name
}

// freeze encodes t. Task parameters are plain structs, so encoding cannot fail.
func freeze(t Task) Submitted {
	params, err := t.MarshalJSON()
	if err != nil {
		panic(fmt.Sprintf("tasks: encode %s: %v", t.Name(), err))
	}
	return Submitted{name: t.Name(), params: params}
}

// Append encodes t, queues it on a and returns the submitted task.
func Append(a Appender, t Configurable) (Submitted, error) {
	params, err := t.MarshalJSON()
	if err != nil {
		return Submitted{}, fmt.Errorf("encode %s: %w", t.Name(), err)
	}

	id, err := a.AppendTask(t.Name(), params)
	if err != nil {
		return Submitted{}, fmt.Errorf("append %s: %w", t.Name(), err)
	}
	if id == 0 {
		return Submitted{}, fmt.Errorf("append %s: %w", t.Name(), ErrAppendRejected)
	}

	return Submitted{name: t.Name(), params: params, id: id}, nil
}
