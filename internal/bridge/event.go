package bridge

import (
	"encoding/json"

	"github.com/oklog/ulid/v2"

	"github.com/foxwhite25/maabridge/internal/engine"
)

// Event is one engine notification after classification. Payload is always
// valid JSON.
type Event struct {
	ID      ulid.ULID
	Kind    engine.MessageKind
	Session uint64
	Payload json.RawMessage

	// sentinel marks the wake-up event enqueued by Connection.Destroy.
	sentinel bool
	hops     int
}

func newEvent(kind engine.MessageKind, session uint64, payload json.RawMessage) Event {
	return Event{
		ID:      ulid.Make(),
		Kind:    kind,
		Session: session,
		Payload: payload,
	}
}

func sentinelEvent(session uint64) Event {
	ev := newEvent(engine.InternalError, session, json.RawMessage("{}"))
	ev.sentinel = true
	return ev
}
