package ports

import (
	"context"

	"github.com/aretw0/kinder/pkg/domain"
)

// Sender delivers a message to a user, optionally with media attachments.
type Sender interface {
	Send(ctx context.Context, userID int64, text string, media []domain.MediaRef) error
}

// EventSource produces the ordered inbound message feed.
// Listen blocks until ctx is canceled or the source fails.
type EventSource interface {
	Listen(ctx context.Context, out chan<- domain.Event) error
}
