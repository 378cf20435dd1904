package bridge

import (
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxwhite25/maabridge/internal/engine"
)

func receive(t *testing.T, ch *Channel) Event {
	t.Helper()
	got := make(chan Event, 1)
	go func() {
		if ev, ok := ch.Receive(); ok {
			got <- ev
		}
	}()
	select {
	case ev := <-got:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}

func TestAdapter_ValidNotification(t *testing.T) {
	ch := newChannel(4)
	a := NewAdapter(99, ch, zerolog.Nop())

	details := []byte(`{"taskchain":"Fight","taskid":1,"uuid":"u"}`)
	a.Callback(int32(engine.TaskChainStart), details, 99)
	details[2] = 'X'

	ev := receive(t, ch)
	assert.Equal(t, engine.TaskChainStart, ev.Kind)
	assert.Equal(t, uint64(99), ev.Session)
	assert.JSONEq(t, `{"taskchain":"Fight","taskid":1,"uuid":"u"}`, string(ev.Payload))
	assert.False(t, ev.sentinel)
}

func TestAdapter_UnknownKind(t *testing.T) {
	ch := newChannel(4)
	NewAdapter(1, ch, zerolog.Nop()).Callback(30000, []byte(`{}`), 1)

	ev := receive(t, ch)
	assert.Equal(t, engine.InternalError, ev.Kind)

	var d diagnostic
	require.NoError(t, json.Unmarshal(ev.Payload, &d))
	assert.Equal(t, whatUnknownMessage, d.What)
	assert.Equal(t, int32(30000), d.Details.Msg)
	assert.Equal(t, `{}`, d.Details.Raw)
}

func TestAdapter_InvalidJSON(t *testing.T) {
	ch := newChannel(4)
	NewAdapter(1, ch, zerolog.Nop()).Callback(int32(engine.ConnectionInfo), []byte(`{"what":`), 1)

	ev := receive(t, ch)
	assert.Equal(t, engine.InternalError, ev.Kind)
	assert.True(t, json.Valid(ev.Payload))

	var d diagnostic
	require.NoError(t, json.Unmarshal(ev.Payload, &d))
	assert.Equal(t, whatMalformedPayload, d.What)
	assert.Equal(t, `{"what":`, d.Details.Raw)
}

func TestAdapter_AfterShutdownDoesNotBlock(t *testing.T) {
	ch := newChannel(1)
	ch.shutdown()

	done := make(chan struct{})
	go func() {
		NewAdapter(1, ch, zerolog.Nop()).Callback(int32(engine.AllTasksCompleted), []byte(`{}`), 1)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback blocked after shutdown")
	}
}

func TestAdapter_FinishedDoesNotBlockOnFullChannel(t *testing.T) {
	ch := newChannel(1)
	finished := &atomic.Bool{}
	a := NewAdapter(1, ch, zerolog.Nop()).withFinished(finished)

	a.Callback(int32(engine.SubTaskStart), []byte(`{"n":0}`), 1)
	finished.Store(true)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			a.Callback(int32(engine.SubTaskCompleted), []byte(`{}`), 1)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback blocked on a full channel after the connection finished")
	}
	assert.Equal(t, 1, ch.Len())
	assert.JSONEq(t, `{"n":0}`, string(receive(t, ch).Payload))
}

func TestAdapter_PreservesOrder(t *testing.T) {
	ch := newChannel(16)
	a := NewAdapter(1, ch, zerolog.Nop())

	for i := 0; i < 10; i++ {
		a.Callback(int32(engine.SubTaskCompleted), []byte(`{"n":`+string(rune('0'+i))+`}`), 1)
	}
	for i := 0; i < 10; i++ {
		ev := receive(t, ch)
		assert.JSONEq(t, `{"n":`+string(rune('0'+i))+`}`, string(ev.Payload))
	}
}

func TestChannel_Refcount(t *testing.T) {
	first := acquireChannel()
	second := acquireChannel()
	assert.Same(t, first, second)

	releaseChannel(first)
	assert.True(t, first.Send(sentinelEvent(1)), "channel must stay open while referenced")

	releaseChannel(second)
	assert.False(t, first.Send(sentinelEvent(1)))
	_, ok := first.Receive()
	if ok {
		// A buffered event may win the select against shutdown; the next call cannot.
		_, ok = first.Receive()
	}
	assert.False(t, ok)

	third := acquireChannel()
	defer releaseChannel(third)
	assert.NotSame(t, first, third)
}
