package bridge

import "sync"

// channelBuffer bounds how far the engine thread can run ahead of dispatch
// before Send blocks.
const channelBuffer = 1024

// Channel is the FIFO queue between the engine thread and dispatch. Events
// are never dropped while it is open; Send blocks when the buffer is full.
type Channel struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
}

func newChannel(buffer int) *Channel {
	return &Channel{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
}

// Send enqueues ev. It returns false once the channel is shut down.
func (c *Channel) Send(ev Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

// TrySend enqueues ev only if the buffer has room. It never blocks.
func (c *Channel) TrySend(ev Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.events <- ev:
		return true
	default:
		return false
	}
}

// Receive blocks until an event is available. ok is false once the channel
// is shut down.
func (c *Channel) Receive() (ev Event, ok bool) {
	select {
	case ev = <-c.events:
		return ev, true
	case <-c.done:
		return Event{}, false
	}
}

// Len returns the number of queued events.
func (c *Channel) Len() int {
	return len(c.events)
}

// shutdown releases every blocked sender and receiver.
func (c *Channel) shutdown() {
	c.once.Do(func() { close(c.done) })
}

// hub owns the process-wide Channel.
var hub struct {
	mu   sync.Mutex
	ch   *Channel
	refs int
}

// acquireChannel returns the process-wide Channel, creating it for the first
// Connection.
func acquireChannel() *Channel {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if hub.ch == nil {
		hub.ch = newChannel(channelBuffer)
	}
	hub.refs++
	return hub.ch
}

// releaseChannel drops one reference and shuts the Channel down after the
// last Connection released it.
func releaseChannel(ch *Channel) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if hub.ch != ch || hub.refs == 0 {
		return
	}
	hub.refs--
	if hub.refs == 0 {
		hub.ch.shutdown()
		hub.ch = nil
	}
}
