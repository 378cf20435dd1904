package bridge

import (
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/foxwhite25/maabridge/internal/engine"
)

// Diagnostic names used for notifications that could not be classified.
const (
	whatUnknownMessage   = "UnknownMessage"
	whatMalformedPayload = "MalformedPayload"
)

type diagnostic struct {
	What    string            `json:"what"`
	Why     string            `json:"why"`
	Details diagnosticDetails `json:"details"`
}

type diagnosticDetails struct {
	Msg int32  `json:"msg"`
	Raw string `json:"raw"`
}

// Adapter is the engine callback. It runs on the engine thread, classifies
// each notification and hands it to the Channel without waiting for dispatch.
type Adapter struct {
	session  uint64
	ch       *Channel
	finished *atomic.Bool
	log      zerolog.Logger
}

// NewAdapter returns an adapter feeding ch for the given session token.
func NewAdapter(session uint64, ch *Channel, log zerolog.Logger) *Adapter {
	return &Adapter{session: session, ch: ch, log: log}
}

// withFinished makes the adapter stop blocking on a full channel once
// finished is set. Nothing drains the channel after dispatch stops, and the
// engine keeps calling back while its instance is being destroyed.
func (a *Adapter) withFinished(finished *atomic.Bool) *Adapter {
	a.finished = finished
	return a
}

// Callback implements engine.Callback. A panic never propagates into the
// engine; the notification is dropped and logged instead.
func (a *Adapter) Callback(kind int32, details []byte, token uint64) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().
				Int32("msg", kind).
				Interface("panic", r).
				Msg("engine callback panicked, notification dropped")
		}
	}()

	if token != a.session {
		a.log.Warn().
			Uint64("token", token).
			Uint64("session", a.session).
			Msg("callback token does not match session")
	}

	ev := classify(kind, details, token)
	if a.finished != nil && a.finished.Load() {
		if !a.ch.TrySend(ev) {
			a.log.Debug().
				Stringer("kind", ev.Kind).
				Msg("connection finished, notification dropped")
		}
		return
	}
	if !a.ch.Send(ev) {
		a.log.Debug().
			Stringer("kind", ev.Kind).
			Msg("event channel closed, notification dropped")
	}
}

// classify turns a raw notification into an Event. Unknown kinds and invalid
// JSON become InternalError diagnostics so nothing reaches dispatch unchecked.
func classify(kind int32, details []byte, token uint64) Event {
	mk := engine.MessageKind(kind)

	switch {
	case !mk.Known():
		return diagnosticEvent(token, diagnostic{
			What:    whatUnknownMessage,
			Why:     fmt.Sprintf("unrecognized message kind %d", kind),
			Details: diagnosticDetails{Msg: kind, Raw: string(details)},
		})
	case !json.Valid(details):
		return diagnosticEvent(token, diagnostic{
			What:    whatMalformedPayload,
			Why:     fmt.Sprintf("payload of %s is not valid JSON", mk),
			Details: diagnosticDetails{Msg: kind, Raw: string(details)},
		})
	default:
		payload := make(json.RawMessage, len(details))
		copy(payload, details)
		return newEvent(mk, token, payload)
	}
}

func diagnosticEvent(token uint64, d diagnostic) Event {
	// Invalid UTF-8 in Raw is replaced by json.Marshal, which never fails here.
	payload, _ := json.Marshal(d)
	return newEvent(engine.InternalError, token, payload)
}
