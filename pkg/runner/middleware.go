package runner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/aretw0/kinder/pkg/domain"
	"github.com/aretw0/kinder/pkg/ports"
	"github.com/google/uuid"
)

// Handler processes one inbound event.
type Handler interface {
	HandleEvent(ctx context.Context, ev domain.Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev domain.Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, ev domain.Event) error {
	return f(ctx, ev)
}

// Middleware wraps a Handler.
type Middleware func(Handler) Handler

// Chain applies middlewares so that the first one is the outermost.
func Chain(h Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

type correlationKey struct{}

// CorrelationID returns the id assigned to the event being handled, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// Correlate tags every event with a fresh id and logs its outcome.
func Correlate(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, ev domain.Event) error {
			id := uuid.NewString()
			ctx = context.WithValue(ctx, correlationKey{}, id)
			logger.Debug("event received", "event_id", id, "user_id", ev.UserID, "has_text", ev.HasText)

			err := next.HandleEvent(ctx, ev)
			if err != nil {
				logger.Error("event failed", "event_id", id, "user_id", ev.UserID, "err", err)
			}
			return err
		})
	}
}

// Recover turns a panic in the wrapped handler into an error and tells the
// user that something went wrong. notifier may be nil.
func Recover(logger *slog.Logger, notifier ports.Sender, text string) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, ev domain.Event) (err error) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				logger.Error("panic while handling event",
					"event_id", CorrelationID(ctx),
					"user_id", ev.UserID,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				if notifier != nil && text != "" {
					if sendErr := notifier.Send(ctx, ev.UserID, text, nil); sendErr != nil {
						logger.Error("failed to notify user after panic", "user_id", ev.UserID, "err", sendErr)
					}
				}
				err = fmt.Errorf("%w: %v", ErrPanic, rec)
			}()
			return next.HandleEvent(ctx, ev)
		})
	}
}
