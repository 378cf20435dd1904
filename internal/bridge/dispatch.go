package bridge

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/foxwhite25/maabridge/internal/engine"
	"github.com/foxwhite25/maabridge/internal/event"
	"github.com/foxwhite25/maabridge/internal/notify"
	"github.com/foxwhite25/maabridge/internal/resource"
)

// uuidCell holds the device UUID reported by the engine.
type uuidCell struct {
	mu    sync.Mutex
	value string
	set   bool
}

func (c *uuidCell) store(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	c.set = true
}

func (c *uuidCell) load() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.set
}

var taskChainEvents = map[engine.MessageKind]event.EventType{
	engine.TaskChainStart:     event.TaskChainStarted,
	engine.TaskChainCompleted: event.TaskChainCompleted,
	engine.TaskChainError:     event.TaskChainFailed,
	engine.TaskChainStopped:   event.TaskChainStopped,
	engine.TaskChainExtraInfo: event.TaskChainExtra,
}

var connectionMessages = map[notify.ConnectionWhat]string{
	notify.ConnectFailed:         "failed to connect to device",
	notify.Connected:             "connected to device",
	notify.UUIDGot:               "device uuid received",
	notify.UnsupportedResolution: "device resolution not supported",
	notify.ResolutionError:       "failed to read device resolution",
	notify.Reconnecting:          "reconnecting to device",
	notify.Reconnected:           "reconnected to device",
	notify.Disconnect:            "device disconnected",
	notify.ScreencapFailed:       "screencap failed",
	notify.TouchModeNotAvailable: "touch mode not available",
	notify.ResolutionGot:         "device resolution received",
}

const maxSentinelHops = 8

// dispatcher consumes the Channel for one Connection.
type dispatcher struct {
	session  uint64
	ch       *Channel
	table    *Table
	uuid     *uuidCell
	finished *atomic.Bool
	items    *resource.Index
	bus      *event.Bus
	log      zerolog.Logger
	done     chan struct{}
}

func (d *dispatcher) start() {
	go d.run()
}

// run receives until the channel shuts down or the connection is finished.
func (d *dispatcher) run() {
	defer close(d.done)

	for {
		ev, ok := d.ch.Receive()
		if !ok {
			d.log.Debug().Msg("event channel shut down, dispatch stopped")
			return
		}
		if ev.sentinel && ev.Session != d.session {
			d.requeue(ev)
			continue
		}
		if d.finished.Load() || ev.sentinel {
			d.log.Debug().Msg("connection finished, dispatch stopped")
			return
		}
		d.handle(ev)
	}
}

// requeue hands a sentinel meant for another connection back to the channel.
// It is dropped after maxSentinelHops so a sentinel whose loop already exited
// does not circulate forever.
func (d *dispatcher) requeue(ev Event) {
	if ev.hops >= maxSentinelHops {
		return
	}
	ev.hops++
	go d.ch.Send(ev)
}

func (d *dispatcher) handle(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Stringer("kind", ev.Kind).
				Str("event", ev.ID.String()).
				Interface("panic", r).
				Msg("event handler panicked")
		}
	}()

	switch {
	case ev.Kind == engine.AsyncCallInfo:
		d.onAsyncCallInfo(ev)
	case ev.Kind == engine.ConnectionInfo:
		d.onConnectionInfo(ev)
	case ev.Kind == engine.InitFailed:
		d.onInitFailed(ev)
	case ev.Kind == engine.AllTasksCompleted:
		d.log.Info().Msg("all tasks completed")
		d.publish(event.TasksCompleted, event.TasksCompletedData{Session: d.session})
	case ev.Kind == engine.InternalError:
		d.onInternalError(ev)
	case ev.Kind.IsTaskChain():
		d.onTaskChain(ev)
	case ev.Kind == engine.SubTaskStart:
		d.onSubTaskStart(ev)
	case ev.Kind == engine.SubTaskExtraInfo:
		d.onSubTaskExtraInfo(ev)
	default:
		d.log.Trace().
			Stringer("kind", ev.Kind).
			RawJSON("details", ev.Payload).
			Msg("sub task event")
	}
}

func (d *dispatcher) discard(ev Event, err error) {
	d.log.Warn().
		Err(err).
		Stringer("kind", ev.Kind).
		Str("event", ev.ID.String()).
		Msg("discarding undecodable notification")
}

func (d *dispatcher) publish(t event.EventType, data any) {
	if d.bus != nil {
		d.bus.Publish(event.Event{Type: t, Data: data})
	}
}

func (d *dispatcher) itemName(id, reported string) string {
	if reported != "" {
		return reported
	}
	if d.items != nil {
		return d.items.Name(id)
	}
	return id
}

func (d *dispatcher) onAsyncCallInfo(ev Event) {
	info, err := notify.DecodeAsyncCallInfo(ev.Payload)
	if err != nil {
		d.discard(ev, err)
		return
	}

	d.table.Insert(info.AsyncCallID, info.Details.Ret)
	d.log.Debug().
		Int32("call", info.AsyncCallID).
		Str("what", info.What).
		Int64("cost_ms", info.Details.Cost).
		Msg("async call completed")
	d.publish(event.AsyncCallCompleted, event.AsyncCallCompletedData{
		Session: d.session,
		CallID:  info.AsyncCallID,
		What:    info.What,
		Result:  info.Details.Ret,
		CostMs:  info.Details.Cost,
	})
}

func (d *dispatcher) onConnectionInfo(ev Event) {
	info, err := notify.DecodeConnectionInfo(ev.Payload)
	if err != nil {
		d.discard(ev, err)
		return
	}

	if info.What == notify.UUIDGot {
		d.uuid.store(info.UUID)
	}

	data := event.ConnectionChangedData{
		Session: d.session,
		What:    string(info.What),
		Why:     info.Why,
		UUID:    info.UUID,
		Address: info.Details.Address,
	}

	e := d.log.WithLevel(info.What.Level()).
		Str("what", string(info.What)).
		Str("address", info.Details.Address)
	if info.Why != "" {
		e = e.Str("why", info.Why)
	}
	switch info.What {
	case notify.UUIDGot:
		e = e.Str("uuid", info.UUID)
	case notify.ResolutionGot:
		if info.Details.Width != nil && info.Details.Height != nil {
			data.Width, data.Height = *info.Details.Width, *info.Details.Height
			e = e.Int("width", data.Width).Int("height", data.Height)
		}
	}

	msg, ok := connectionMessages[info.What]
	if !ok {
		msg = "unhandled connection event"
	}
	e.Msg(msg)

	d.publish(event.ConnectionChanged, data)
}

func (d *dispatcher) onInitFailed(ev Event) {
	info, err := notify.DecodeInitFailed(ev.Payload)
	if err != nil {
		d.discard(ev, err)
		return
	}

	d.log.Error().
		Str("what", info.What).
		Str("why", info.Why).
		RawJSON("details", info.Details).
		Msg("engine initialisation failed")
	d.publish(event.InitFailed, event.InitFailedData{Session: d.session, What: info.What, Why: info.Why})
}

func (d *dispatcher) onInternalError(ev Event) {
	what := gjson.GetBytes(ev.Payload, "what").String()
	if what == whatUnknownMessage || what == whatMalformedPayload {
		d.log.Warn().
			Str("what", what).
			Str("why", gjson.GetBytes(ev.Payload, "why").String()).
			Msg("engine sent an unusable notification")
	} else {
		d.log.Trace().RawJSON("details", ev.Payload).Msg("engine internal error")
	}
	d.publish(event.EngineDiagnostic, event.EngineDiagnosticData{Session: d.session, Payload: string(ev.Payload)})
}

func (d *dispatcher) onTaskChain(ev Event) {
	info, err := notify.DecodeTaskChainInfo(ev.Payload)
	if err != nil {
		d.discard(ev, err)
		return
	}

	var e *zerolog.Event
	var msg string
	switch ev.Kind {
	case engine.TaskChainStart:
		e, msg = d.log.Info(), "task chain started"
	case engine.TaskChainCompleted:
		e, msg = d.log.Info(), "task chain completed"
	case engine.TaskChainError:
		e, msg = d.log.Error(), "task chain failed"
	case engine.TaskChainStopped:
		e, msg = d.log.Warn(), "task chain stopped"
	default:
		e, msg = d.log.Debug(), "task chain extra info"
	}
	e.Str("taskchain", info.TaskChain).Int32("task", info.TaskID).Msg(msg)

	d.publish(taskChainEvents[ev.Kind], event.TaskChainData{
		Session:   d.session,
		TaskChain: info.TaskChain,
		TaskID:    info.TaskID,
	})
}

func (d *dispatcher) onSubTaskStart(ev Event) {
	info, err := notify.DecodeSubTaskStart(ev.Payload)
	if err != nil {
		d.discard(ev, err)
		return
	}

	d.log.Trace().
		Str("taskchain", info.TaskChain).
		Str("subtask", info.SubTask).
		Str("task", info.Details.Task).
		Str("action", info.Details.Action).
		Int("exec_times", info.Details.ExecTimes).
		Int("max_times", info.Details.MaxTimes).
		Msg("sub task started")
}

func (d *dispatcher) onSubTaskExtraInfo(ev Event) {
	info, err := notify.DecodeSubTaskExtraInfo(ev.Payload)
	if err != nil {
		d.discard(ev, err)
		return
	}

	switch info.Variant() {
	case notify.ExtraStageDrops:
		d.onStageDrops(ev, info.Details)
	case notify.ExtraRecruitResult:
		d.onRecruitResult(ev, info.Details)
	default:
		d.log.Debug().
			Str("taskchain", info.TaskChain).
			Str("what", info.What).
			RawJSON("details", info.Details).
			Msg("sub task extra info")
	}
}

func (d *dispatcher) onStageDrops(ev Event, details json.RawMessage) {
	drops, err := notify.DecodeStageDrops(details)
	if err != nil {
		d.discard(ev, err)
		return
	}

	data := event.StageDropsData{
		Session:   d.session,
		StageCode: drops.Stage.StageCode,
		Stars:     drops.Stars,
	}
	got := zerolog.Arr()
	for _, drop := range drops.Drops {
		name := d.itemName(drop.ItemID, drop.ItemName)
		data.Drops = append(data.Drops, event.ItemCount{ItemID: drop.ItemID, Name: name, Quantity: drop.Quantity})
		got.Str(fmt.Sprintf("%s x%d", name, drop.Quantity))
	}
	totals := zerolog.Arr()
	for _, stat := range drops.Stats {
		name := d.itemName(stat.ItemID, stat.ItemName)
		data.Totals = append(data.Totals, event.ItemCount{ItemID: stat.ItemID, Name: name, Quantity: stat.Quantity})
		totals.Str(fmt.Sprintf("%s x%d (+%d)", name, stat.Quantity, stat.AddQuantity))
	}

	d.log.Info().
		Str("stage", drops.Stage.StageCode).
		Int("stars", drops.Stars).
		Array("drops", got).
		Array("totals", totals).
		Msg("stage drops")
	d.publish(event.StageDropsReported, data)
}

func (d *dispatcher) onRecruitResult(ev Event, details json.RawMessage) {
	result, err := notify.DecodeRecruitResult(details)
	if err != nil {
		d.discard(ev, err)
		return
	}

	d.log.Info().
		Strs("tags", result.Tags).
		Int("level", result.Level).
		Msg("recruitment tags recognized")
	d.publish(event.RecruitReported, event.RecruitReportedData{
		Session: d.session,
		Tags:    result.Tags,
		Level:   result.Level,
	})
}
