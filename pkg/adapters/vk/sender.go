package vk

import (
	"context"
	"math/rand/v2"

	"github.com/SevereCloud/vksdk/v3/api"
	"github.com/aretw0/kinder/pkg/domain"
)

// Sender delivers messages on behalf of the community (group token).
type Sender struct {
	client *Client
}

// NewSender creates a Sender.
func NewSender(client *Client) *Sender {
	return &Sender{client: client}
}

// Send calls messages.send. random_id deduplicates retries on the VK side.
func (s *Sender) Send(ctx context.Context, userID int64, text string, media []domain.MediaRef) error {
	params := api.Params{
		"user_id":   userID,
		"message":   text,
		"random_id": rand.Int32(),
	}
	if len(media) > 0 {
		params["attachment"] = domain.Attachments(media)
	}
	return s.client.call("messages.send", func() error {
		_, err := s.client.api.MessagesSend(params.WithContext(ctx))
		return err
	})
}
