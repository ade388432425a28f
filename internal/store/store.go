package store

import (
	"context"

	"github.com/nvu/chatdeck/internal/model"
)

// Store defines the local cache for notifications and the signed-in
// profile. It only warms startup and survives restarts; the aggregated
// summary set itself is always recomputed in memory and never persisted.
type Store interface {
	// ReplaceNotifications swaps the cached notification list for the
	// given one. Used after every full fetch from the backend.
	ReplaceNotifications(ctx context.Context, notifications []model.Notification) error

	// GetNotifications returns the cached notification list, newest
	// first.
	GetNotifications(ctx context.Context) ([]model.Notification, error)

	// MarkConversationRead flags every cached message notification of
	// a conversation as read. Applied after a confirmed mark-read so a
	// restart before the next fetch does not resurrect the unread
	// summary.
	MarkConversationRead(ctx context.Context, conversationID string) error

	// SaveProfile caches the signed-in user's profile.
	SaveProfile(ctx context.Context, user model.User) error

	// GetProfile returns the cached profile, or nil when none is
	// cached yet.
	GetProfile(ctx context.Context) (*model.User, error)
}
