/*
Package event carries bridge observability events to interested parties.

The dispatch loop of every connection publishes what the engine reports so that
the CLI, the HTTP server and tests can react without touching the loop itself.
Nothing on the bus is needed for correctness: request/reply correlation happens
in the bridge package, and a bus without subscribers drops everything.

# Event Types

Connection:
  - connection.info: device connection state changed (ConnectionChangedData)
  - init.failed: the engine failed to initialise (InitFailedData)
  - async.completed: an asynchronous engine call finished (AsyncCallCompletedData)

Tasks:
  - taskchain.start, taskchain.completed, taskchain.error, taskchain.stopped,
    taskchain.extra: task chain progress (TaskChainData)
  - tasks.completed: the engine queue drained (TasksCompletedData)
  - stage.drops: battle drops after a fight (StageDropsData)
  - recruit.result: recruitment tags recognized (RecruitReportedData)

Diagnostics:
  - internal.error: engine diagnostics and undecodable notifications
  - items.reloaded: the item index was re-read from disk

# Basic Usage

	unsubscribe := bus.Subscribe(event.StageDropsReported, func(e event.Event) {
		data := e.Data.(event.StageDropsData)
		fmt.Println(data.StageCode, data.Stars)
	})
	defer unsubscribe()

Publish calls each subscriber in its own goroutine; PublishSync calls them in
the publisher's goroutine, so those subscribers must return quickly and must not
publish themselves.

# Streams

Stream subscribes to the watermill GoChannel behind the bus. Every event is
forwarded there as JSON ({"type", "properties", "time"}) while at least one
stream is open:

	msgs, err := bus.Stream(ctx)
	for msg := range msgs {
		write(msg.Payload)
		msg.Ack()
	}

# Testing

Use NewBus for isolation, or Reset to replace the global bus between tests.
*/
package event
