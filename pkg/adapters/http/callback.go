package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/SevereCloud/vksdk/v3/callback"
	"github.com/SevereCloud/vksdk/v3/events"
	"github.com/aretw0/kinder/internal/logging"
	"github.com/aretw0/kinder/pkg/adapters/vk"
	"github.com/aretw0/kinder/pkg/domain"
)

// CallbackSource receives VK Callback API notifications over HTTP and
// exposes them as a ports.EventSource. Confirmation and secret checks are
// done by vksdk's callback handler.
type CallbackSource struct {
	cb     *callback.Callback
	events chan domain.Event
	logger *slog.Logger
}

// CallbackOption configures a CallbackSource.
type CallbackOption func(*CallbackSource)

// WithSecret rejects notifications whose secret field differs.
func WithSecret(secret string) CallbackOption {
	return func(c *CallbackSource) {
		c.cb.SecretKey = secret
	}
}

// WithCallbackLogger sets a custom structured logger.
func WithCallbackLogger(logger *slog.Logger) CallbackOption {
	return func(c *CallbackSource) {
		c.logger = logger
	}
}

type rejectedKey struct{}

// NewCallbackSource creates a source answering confirmation requests with confirmation.
func NewCallbackSource(confirmation string, opts ...CallbackOption) *CallbackSource {
	c := &CallbackSource{
		cb:     callback.NewCallback(),
		events: make(chan domain.Event),
		logger: logging.NewNop(),
	}
	c.cb.ConfirmationKey = confirmation
	for _, opt := range opts {
		opt(c)
	}

	c.cb.MessageNew(func(ctx context.Context, obj events.MessageNewObject) {
		select {
		case c.events <- vk.EventFromMessage(obj.Message):
		case <-ctx.Done():
			if rejected, ok := ctx.Value(rejectedKey{}).(*atomic.Bool); ok {
				rejected.Store(true)
			}
		}
	})
	return c
}

// Listen forwards received events to out until ctx is done.
func (c *CallbackSource) Listen(ctx context.Context, out chan<- domain.Event) error {
	for {
		select {
		case ev := <-c.events:
			select {
			case out <- ev:
			case <-ctx.Done():
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// ServeHTTP handles one notification. The request blocks until the event is
// accepted by Listen; if the request ends first it is answered with 503 so
// VK delivers it again.
func (c *CallbackSource) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rejected := new(atomic.Bool)
	r = r.WithContext(context.WithValue(r.Context(), rejectedKey{}, rejected))

	buf := &bufferedResponse{header: w.Header(), status: http.StatusOK}
	c.cb.HandleFunc(buf, r)

	if rejected.Load() {
		c.logger.Warn("callback: event not accepted before the request ended")
		http.Error(w, "not accepted", http.StatusServiceUnavailable)
		return
	}
	if buf.status != http.StatusOK {
		c.logger.Warn("callback: request rejected", "status", buf.status, "body", buf.body.String())
	}
	w.WriteHeader(buf.status)
	_, _ = w.Write(buf.body.Bytes())
}

// bufferedResponse holds the callback answer until the event is known to be accepted.
type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) { b.status = status }

func (b *bufferedResponse) Write(p []byte) (int, error) { return b.body.Write(p) }
