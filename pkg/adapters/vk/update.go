package vk

import (
	"strings"

	"github.com/SevereCloud/vksdk/v3/object"
	"github.com/aretw0/kinder/pkg/domain"
)

// chatPeerBase is the first peer id of group conversations.
const chatPeerBase = 2_000_000_000

// EventFromMessage converts an incoming message_new payload into a domain event.
// Used by both the long poll and the Callback API sources.
func EventFromMessage(msg object.MessagesMessage) domain.Event {
	from, peer := int64(msg.FromID), int64(msg.PeerID)
	return domain.Event{
		UserID:   from,
		Text:     msg.Text,
		FromUser: from > 0 && peer == from && peer < chatPeerBase,
		ToBot:    !bool(msg.Out),
		HasText:  strings.TrimSpace(msg.Text) != "",
	}
}
