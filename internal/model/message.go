package model

import "time"

// Message is a single chat message inside a conversation, shown in the
// conversation detail view after an open succeeds.
type Message struct {
	// ID is the unique identifier for this message.
	ID string `json:"id"`

	// ConversationID is the thread this message belongs to.
	ConversationID string `json:"conversationId"`

	// Sender is the author of the message.
	Sender Actor `json:"sender"`

	// Body is the message text.
	Body string `json:"body"`

	// SentAt is when the message was sent.
	SentAt time.Time `json:"sentAt"`
}
