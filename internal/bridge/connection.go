package bridge

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/foxwhite25/maabridge/internal/engine"
	"github.com/foxwhite25/maabridge/internal/event"
	"github.com/foxwhite25/maabridge/internal/resource"
	"github.com/foxwhite25/maabridge/pkg/tasks"
)

// State is the lifecycle stage of a Connection.
type State int32

const (
	StateUninitialized State = iota
	StateResourcesLoaded
	StateHandleCreated
	StatePolling
	StateConnected
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateResourcesLoaded:
		return "resources_loaded"
	case StateHandleCreated:
		return "handle_created"
	case StatePolling:
		return "polling"
	case StateConnected:
		return "connected"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// dispatchStopTimeout bounds how long Destroy waits for the dispatch loop.
const dispatchStopTimeout = 5 * time.Second

// Connection is a connected engine instance. All methods are safe for
// concurrent use. Destroy releases the instance; it also runs when an
// unreachable Connection is garbage collected.
type Connection struct {
	eng      engine.Engine
	instance engine.Instance
	session  uint64
	target   string

	channel  *Channel
	table    *Table
	uuid     *uuidCell
	finished *atomic.Bool
	dispatch *dispatcher

	items *resource.Index
	bus   *event.Bus
	log   zerolog.Logger

	// mu guards instance use against Destroy.
	mu          sync.RWMutex
	state       atomic.Int32
	destroyOnce sync.Once
}

var _ tasks.Appender = (*Connection)(nil)

func (c *Connection) setState(s State) {
	c.state.Store(int32(s))
}

// State returns the lifecycle stage.
func (c *Connection) State() State {
	return State(c.state.Load())
}

// Session returns the token the engine echoes with every notification.
func (c *Connection) Session() uint64 {
	return c.session
}

// Target returns the device address.
func (c *Connection) Target() string {
	return c.target
}

// UUID returns the device UUID once the engine reported it.
func (c *Connection) UUID() (string, bool) {
	return c.uuid.load()
}

// Items returns the item index loaded from the resources.
func (c *Connection) Items() *resource.Index {
	return c.items
}

// Bus returns the bus dispatch publishes to.
func (c *Connection) Bus() *event.Bus {
	return c.bus
}

// Table returns the correlation table of this connection.
func (c *Connection) Table() *Table {
	return c.table
}

// Watch returns a Watcher for an async call id returned by the engine.
func (c *Connection) Watch(id int32) *Watcher {
	return NewWatcher(id, c.table)
}

// Version returns the engine version.
func (c *Connection) Version() string {
	return c.eng.Version()
}

// AppendTask queues a task with raw JSON parameters. It implements
// tasks.Appender; prefer Append.
func (c *Connection) AppendTask(kind string, params []byte) (int32, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.State() == StateDestroyed {
		return 0, ErrDestroyed
	}

	id, err := c.instance.AppendTask(kind, params)
	if err != nil {
		return 0, err
	}
	c.log.Debug().Str("task", kind).Int32("id", id).Msg("task appended")
	return id, nil
}

// Append queues a configured task and returns it in submitted form.
func (c *Connection) Append(t tasks.Configurable) (tasks.Submitted, error) {
	return tasks.Append(c, t)
}

// Start runs the queued tasks.
func (c *Connection) Start() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.State() == StateDestroyed {
		return ErrDestroyed
	}
	return c.instance.Start()
}

// Stop aborts the running tasks and clears the queue.
func (c *Connection) Stop() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.State() == StateDestroyed {
		return ErrDestroyed
	}
	return c.instance.Stop()
}

// Running reports whether the engine is executing tasks.
func (c *Connection) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.State() == StateDestroyed {
		return false
	}
	return c.instance.Running()
}

// WaitIdle blocks until the engine reports all tasks completed or stops
// running, whichever is noticed first.
func (c *Connection) WaitIdle(ctx context.Context) error {
	if c.State() == StateDestroyed {
		return ErrDestroyed
	}

	completed := make(chan struct{})
	var once sync.Once
	if c.bus != nil {
		unsub := c.bus.Subscribe(event.TasksCompleted, func(e event.Event) {
			if data, ok := e.Data.(event.TasksCompletedData); ok && data.Session == c.session {
				once.Do(func() { close(completed) })
			}
		})
		defer unsub()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0
	ticker := backoff.NewTicker(backoff.WithContext(b, ctx))
	defer ticker.Stop()

	for {
		select {
		case <-completed:
			return nil
		case _, ok := <-ticker.C:
			if !ok {
				return ctx.Err()
			}
			if !c.Running() {
				if c.State() == StateDestroyed {
					return ErrDestroyed
				}
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Destroy releases the engine instance. It is idempotent and never fails.
func (c *Connection) Destroy() {
	c.destroyOnce.Do(c.teardown)
}

// Close implements io.Closer.
func (c *Connection) Close() error {
	c.Destroy()
	return nil
}

func (c *Connection) teardown() {
	runtime.SetFinalizer(c, nil)

	c.finished.Store(true)
	if c.dispatch != nil {
		c.channel.Send(sentinelEvent(c.session))
	}

	c.mu.Lock()
	if c.instance != nil {
		c.instance.Destroy()
	}
	c.setState(StateDestroyed)
	c.mu.Unlock()

	if c.dispatch != nil {
		select {
		case <-c.dispatch.done:
		case <-time.After(dispatchStopTimeout):
			c.log.Warn().Msg("dispatch loop did not stop in time")
		}
	}
	releaseChannel(c.channel)

	c.log.Debug().Uint64("session", c.session).Msg("connection destroyed")
}

func finalizeConnection(c *Connection) {
	c.log.Warn().Uint64("session", c.session).Msg("connection was not destroyed, releasing it")
	c.Destroy()
}
