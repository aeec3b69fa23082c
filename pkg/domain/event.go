package domain

// Event is an inbound message from the messaging platform.
type Event struct {
	UserID int64
	Text   string

	// FromUser is false for messages posted in group chats.
	FromUser bool

	// ToBot is true when the message is addressed to the community.
	ToBot bool

	// HasText is false for stickers, photos and other non-text payloads.
	HasText bool
}

// Direct reports whether the event is a private message addressed to the bot.
func (e Event) Direct() bool {
	return e.FromUser && e.ToBot
}
