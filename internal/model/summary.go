package model

// SummaryKind identifies whether a summary describes a group thread or
// a direct thread.
type SummaryKind string

const (
	SummaryGroup  SummaryKind = "GROUP"
	SummaryDirect SummaryKind = "DIRECT"
)

// ConversationSummary is the derived, per-conversation unread
// projection. Summaries are rebuilt from the notification list on every
// relevant change and are never persisted.
type ConversationSummary struct {
	// ConversationID is the unique key for this summary.
	ConversationID string `json:"conversationId"`

	// Kind distinguishes group from direct conversations.
	Kind SummaryKind `json:"kind"`

	// DisplayName is the group name or, for direct threads, the name
	// of the actor who sent the unread messages.
	DisplayName string `json:"displayName"`

	// AvatarRef is the sender's avatar image for direct threads.
	// Empty for group threads, which render a glyph instead.
	AvatarRef string `json:"avatarRef,omitempty"`

	// UnreadCount is the number of unread message notifications for
	// this conversation. Always at least 1.
	UnreadCount int `json:"unreadCount"`
}
