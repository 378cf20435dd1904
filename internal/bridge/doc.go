/*
Package bridge turns the engine's single callback into awaitable results.

The engine reports everything through one callback running on its own thread.
The Adapter classifies each invocation into an Event and enqueues it on the
process-wide Channel without waiting. A dispatch goroutine per Connection takes
events off the Channel in order, runs the side effects (logging, device UUID,
bus publication) and records the result of asynchronous calls in the
correlation Table. A Watcher waits for the entry of one async call id and
removes it, so each result is delivered exactly once.

	conn, err := bridge.NewBuilder(eng, "/opt/maa", "127.0.0.1:5555").
		WithOptions(bridge.Options{TouchMode: bridge.TouchMaaTouch}).
		Build(ctx)
	if err != nil {
		return err
	}
	defer conn.Destroy()

	if _, err := conn.Append(tasks.NewFight().Stage("1-7")); err != nil {
		return err
	}
	if err := conn.Start(); err != nil {
		return err
	}
	return conn.WaitIdle(ctx)

# Channel lifetime

The Channel is created when the first Connection is built and shut down when
the last one is destroyed. Events carry the session token of the Connection
that produced them. Routing events between several live connections is not
supported; run one Connection per process.
*/
package bridge
