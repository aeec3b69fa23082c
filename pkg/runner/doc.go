/*
Package runner implements the dispatch loop of the agent.

It consumes one ordered feed of inbound events from a ports.EventSource,
drops everything that is not a private message to the bot, and queues the
rest per user. Every user with pending events gets its own goroutine that
handles them in arrival order and exits when the queue is empty, so a slow
turn only delays the user who issued it.

# Usage

	r := runner.New(source, dispatcher,
		runner.WithQueueSize(16),
		runner.WithLogger(logger),
		runner.WithPanicNotifier(sender, catalog.Internal),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}

Cancelling ctx stops the source; events already queued are still handled
before Run returns.
*/
package runner
