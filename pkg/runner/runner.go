package runner

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/kinder/internal/logging"
	"github.com/aretw0/kinder/pkg/domain"
	"github.com/aretw0/kinder/pkg/ports"
)

// DefaultQueueSize is the number of events one user may have pending.
const DefaultQueueSize = 64

// ErrPanic wraps panics recovered while handling an event.
var ErrPanic = errors.New("handler panicked")

// Dispositions reported to the event recorder.
const (
	DispositionHandled = "handled"
	DispositionIgnored = "ignored"
	DispositionFailed  = "failed"
	DispositionPanic   = "panic"
	DispositionDropped = "dropped"
)

// Runner feeds events from a source to a handler.
type Runner struct {
	source  ports.EventSource
	handler Handler

	queueSize int
	logger    *slog.Logger
	record    func(disposition string)

	notifier   ports.Sender
	notifyText string

	middlewares []Middleware
}

// New creates a Runner.
func New(source ports.EventSource, handler Handler, opts ...Option) *Runner {
	r := &Runner{
		source:    source,
		handler:   handler,
		queueSize: DefaultQueueSize,
		logger:    logging.NewNop(),
		record:    func(string) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run blocks until the source stops, then drains the queued events.
// It returns the source error, or nil when the source ended because ctx was cancelled
// or because it ran out of input.
func (r *Runner) Run(ctx context.Context) error {
	handler := Chain(r.handler, append([]Middleware{
		Correlate(r.logger),
		Recover(r.logger, r.notifier, r.notifyText),
	}, r.middlewares...)...)

	// Queued events are finished even after shutdown starts.
	handleCtx := context.WithoutCancel(ctx)

	queues := newUserQueues(r.queueSize)
	drain := func(userID int64) {
		for {
			ev, ok := queues.pop(userID)
			if !ok {
				return
			}
			r.handle(handleCtx, handler, ev)
		}
	}

	events := make(chan domain.Event, DefaultQueueSize)
	srcErr := make(chan error, 1)
	go func() {
		defer close(events)
		srcErr <- r.source.Listen(ctx, events)
	}()

	r.logger.Info("runner started", "queue_size", r.queueSize)
	for ev := range events {
		if !ev.Direct() {
			r.record(DispositionIgnored)
			continue
		}
		accepted, start := queues.push(ev)
		if !accepted {
			r.logger.Warn("user backlog full, dropping event", "user_id", ev.UserID, "limit", r.queueSize)
			r.record(DispositionDropped)
			continue
		}
		if start {
			go drain(ev.UserID)
		}
	}

	if n := queues.active(); n > 0 {
		r.logger.Info("draining pending turns", "users", n)
	}
	queues.wait()

	err := <-srcErr
	if err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Error("event source stopped", "err", err)
		return err
	}
	r.logger.Info("runner stopped")
	return nil
}

func (r *Runner) handle(ctx context.Context, h Handler, ev domain.Event) {
	err := h.HandleEvent(ctx, ev)
	switch {
	case err == nil:
		r.record(DispositionHandled)
	case errors.Is(err, ErrPanic):
		r.record(DispositionPanic)
	default:
		r.record(DispositionFailed)
	}
}
