package model

import "time"

// NotificationType identifies the kind of activity a notification reports.
type NotificationType string

const (
	NotificationMessage     NotificationType = "MESSAGE"
	NotificationFollow      NotificationType = "FOLLOW"
	NotificationGroupInvite NotificationType = "GROUP_INVITE"
	NotificationEvent       NotificationType = "EVENT"
)

// ConversationType distinguishes group threads from direct threads.
type ConversationType string

const (
	ConversationGroup  ConversationType = "GROUP_MESSAGE"
	ConversationDirect ConversationType = "DIRECT_MESSAGE"
)

// ConversationRef is the conversation record embedded in a notification.
type ConversationRef struct {
	// Type is the conversation kind (group or direct).
	Type ConversationType `json:"type"`

	// Name is the conversation title. Only group conversations are
	// expected to carry one; it may still be empty.
	Name string `json:"name"`
}

// Actor is the user whose activity triggered a notification.
type Actor struct {
	// ID is the actor's profile identifier. Older backends omit it.
	ID string `json:"id,omitempty"`

	// Name is the actor's display name.
	Name string `json:"name"`

	// ImageURL points to the actor's avatar image.
	ImageURL string `json:"imageUrl"`
}

// Notification is a single activity record delivered by the backend,
// either via the notification list endpoint or as a realtime event.
// Records are read-only on the client; the server owns their lifecycle.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// Type identifies the kind of activity.
	Type NotificationType `json:"type"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// ConversationID links message notifications to their thread.
	// Empty for non-conversation notifications.
	ConversationID string `json:"conversationId,omitempty"`

	// Conversation is the embedded conversation record, present only
	// when ConversationID is set and the server chose to expand it.
	Conversation *ConversationRef `json:"conversation,omitempty"`

	// TriggeredBy is the actor that caused this notification. Absent
	// for system-generated notifications.
	TriggeredBy *Actor `json:"triggeredBy,omitempty"`

	// ProfileID is the profile this notification belongs to.
	ProfileID string `json:"profileId"`

	// CreatedAt is when the server generated this notification.
	CreatedAt time.Time `json:"createdAt"`
}

// IsUnreadMessage reports whether this notification is an unread,
// conversation-scoped message. Only these records contribute to the
// unread conversation summaries.
func (n Notification) IsUnreadMessage() bool {
	return n.Type == NotificationMessage && !n.Read && n.ConversationID != ""
}
