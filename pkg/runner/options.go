package runner

import (
	"log/slog"

	"github.com/aretw0/kinder/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithQueueSize caps the events one user may have waiting while a turn is
// in flight. Extra events are dropped. Zero means no cap.
func WithQueueSize(n int) Option {
	return func(r *Runner) {
		if n >= 0 {
			r.queueSize = n
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithEventRecorder receives the disposition of every event (metrics).
func WithEventRecorder(record func(disposition string)) Option {
	return func(r *Runner) {
		if record != nil {
			r.record = record
		}
	}
}

// WithPanicNotifier sends text to the user whose event caused a panic.
func WithPanicNotifier(sender ports.Sender, text string) Option {
	return func(r *Runner) {
		r.notifier = sender
		r.notifyText = text
	}
}

// WithMiddleware adds handler middlewares inside the built-in ones.
func WithMiddleware(mw ...Middleware) Option {
	return func(r *Runner) {
		r.middlewares = append(r.middlewares, mw...)
	}
}
