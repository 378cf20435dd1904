package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/tidwall/gjson"

	"github.com/foxwhite25/maabridge/internal/event"
)

// reporter prints streamed bus events as they arrive.
type reporter struct {
	out  io.Writer
	json bool
}

// run consumes msgs until the stream closes.
func (r *reporter) run(msgs <-chan *message.Message) {
	for msg := range msgs {
		r.write(event.EventType(msg.Metadata.Get("type")), msg.Payload)
		msg.Ack()
	}
}

func (r *reporter) write(kind event.EventType, payload []byte) {
	if r.json {
		fmt.Fprintf(r.out, "%s\n", payload)
		return
	}
	if line := describe(kind, gjson.GetBytes(payload, "properties")); line != "" {
		fmt.Fprintln(r.out, line)
	}
}

// describe renders one event as a line of text, or "" for events not worth
// printing.
func describe(kind event.EventType, p gjson.Result) string {
	task := func() string {
		return fmt.Sprintf("%s#%d", p.Get("taskchain").String(), p.Get("taskID").Int())
	}

	switch kind {
	case event.ConnectionChanged:
		line := fmt.Sprintf("device   %s %s", p.Get("what").String(), p.Get("address").String())
		if why := p.Get("why").String(); why != "" {
			line += ": " + why
		}
		return line
	case event.InitFailed:
		return fmt.Sprintf("engine   init failed: %s: %s", p.Get("what").String(), p.Get("why").String())
	case event.TaskChainStarted:
		return "task     " + task() + " started"
	case event.TaskChainCompleted:
		return "task     " + task() + " completed"
	case event.TaskChainFailed:
		return "task     " + task() + " failed"
	case event.TaskChainStopped:
		return "task     " + task() + " stopped"
	case event.TasksCompleted:
		return "all tasks completed"
	case event.StageDropsReported:
		return fmt.Sprintf("drops    %s (%d stars): %s",
			p.Get("stageCode").String(), p.Get("stars").Int(), itemList(p.Get("drops")))
	case event.RecruitReported:
		tags := make([]string, 0, 5)
		for _, tag := range p.Get("tags").Array() {
			tags = append(tags, tag.String())
		}
		return fmt.Sprintf("recruit  level %d: %s", p.Get("level").Int(), strings.Join(tags, ", "))
	case event.EngineDiagnostic:
		return "engine   " + p.Get("payload").String()
	case event.ItemsReloaded:
		return fmt.Sprintf("items    reloaded %d from %s", p.Get("count").Int(), p.Get("path").String())
	}
	return ""
}

func itemList(items gjson.Result) string {
	parts := make([]string, 0, 4)
	for _, item := range items.Array() {
		parts = append(parts, fmt.Sprintf("%s x%d", item.Get("name").String(), item.Get("quantity").Int()))
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, ", ")
}
