package bridge

import (
	"context"
	"sync"
)

// Table holds async call results until a Watcher claims them. Entries are
// inserted by dispatch and removed by the Watcher that reads them, so every
// result is delivered at most once.
type Table struct {
	mu      sync.Mutex
	entries map[int32]any
	waiters map[int32]*waiter
}

// waiter is the wake channel shared by every Wait blocked on one id.
type waiter struct {
	wake chan struct{}
	refs int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		entries: make(map[int32]any),
		waiters: make(map[int32]*waiter),
	}
}

// Insert records the result of call id and wakes its waiters. A second insert
// for an id still in the table replaces the first value.
func (t *Table) Insert(id int32, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[id] = value
	if w, ok := t.waiters[id]; ok {
		close(w.wake)
		delete(t.waiters, id)
	}
}

// Take removes and returns the result of call id if present.
func (t *Table) Take(id int32) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	value, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
	}
	return value, ok
}

// takeOrWait removes the entry for id, or registers the caller on the
// waiter woken by the next Insert for id.
func (t *Table) takeOrWait(id int32) (any, bool, *waiter) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if value, ok := t.entries[id]; ok {
		delete(t.entries, id)
		return value, true, nil
	}

	w, ok := t.waiters[id]
	if !ok {
		w = &waiter{wake: make(chan struct{})}
		t.waiters[id] = w
	}
	w.refs++
	return nil, false, w
}

// abandon unregisters a cancelled Wait. The waiter is dropped once nobody
// else is blocked on it.
func (t *Table) abandon(id int32, w *waiter) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.waiters[id] != w {
		return
	}
	w.refs--
	if w.refs == 0 {
		delete(t.waiters, id)
	}
}

// pending returns the number of ids with a blocked Wait.
func (t *Table) pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.waiters)
}

// Len returns the number of unclaimed results.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Watcher waits for the result of one async call.
type Watcher struct {
	id    int32
	table *Table
}

// NewWatcher returns a watcher for call id on table.
func NewWatcher(id int32, table *Table) *Watcher {
	return &Watcher{id: id, table: table}
}

// ID returns the async call id being watched.
func (w *Watcher) ID() int32 {
	return w.id
}

// Poll makes a single attempt to claim the result.
func (w *Watcher) Poll() (any, bool) {
	return w.table.Take(w.id)
}

// Wait blocks until the result arrives or ctx is done. After cancellation a
// late result stays in the table until someone takes it.
func (w *Watcher) Wait(ctx context.Context) (any, error) {
	for {
		value, ok, waiting := w.table.takeOrWait(w.id)
		if ok {
			return value, nil
		}

		select {
		case <-waiting.wake:
			// Another watcher of the same id may have taken it first; loop.
		case <-ctx.Done():
			w.table.abandon(w.id, waiting)
			return nil, ctx.Err()
		}
	}
}
