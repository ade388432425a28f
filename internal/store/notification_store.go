package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nvu/chatdeck/internal/model"
)

// notificationRow is the flat database shape of a model.Notification.
type notificationRow struct {
	ID               string    `db:"id"`
	Type             string    `db:"type"`
	Read             bool      `db:"read"`
	ConversationID   string    `db:"conversation_id"`
	ConversationType string    `db:"conversation_type"`
	ConversationName string    `db:"conversation_name"`
	ActorID          string    `db:"actor_id"`
	ActorName        string    `db:"actor_name"`
	ActorImageURL    string    `db:"actor_image_url"`
	ProfileID        string    `db:"profile_id"`
	CreatedAt        time.Time `db:"created_at"`
	FetchedAt        time.Time `db:"fetched_at"`
}

func toRow(n model.Notification, fetchedAt time.Time) notificationRow {
	row := notificationRow{
		ID:             n.ID,
		Type:           string(n.Type),
		Read:           n.Read,
		ConversationID: n.ConversationID,
		ProfileID:      n.ProfileID,
		CreatedAt:      n.CreatedAt,
		FetchedAt:      fetchedAt,
	}
	if n.Conversation != nil {
		row.ConversationType = string(n.Conversation.Type)
		row.ConversationName = n.Conversation.Name
	}
	if n.TriggeredBy != nil {
		row.ActorID = n.TriggeredBy.ID
		row.ActorName = n.TriggeredBy.Name
		row.ActorImageURL = n.TriggeredBy.ImageURL
	}
	return row
}

func (r notificationRow) toModel() model.Notification {
	n := model.Notification{
		ID:             r.ID,
		Type:           model.NotificationType(r.Type),
		Read:           r.Read,
		ConversationID: r.ConversationID,
		ProfileID:      r.ProfileID,
		CreatedAt:      r.CreatedAt,
	}
	if r.ConversationType != "" || r.ConversationName != "" {
		n.Conversation = &model.ConversationRef{
			Type: model.ConversationType(r.ConversationType),
			Name: r.ConversationName,
		}
	}
	if r.ActorName != "" || r.ActorID != "" {
		n.TriggeredBy = &model.Actor{
			ID:       r.ActorID,
			Name:     r.ActorName,
			ImageURL: r.ActorImageURL,
		}
	}
	return n
}

// ReplaceNotifications swaps the cached notification list wholesale.
func (s *SQLiteStore) ReplaceNotifications(
	ctx context.Context,
	notifications []model.Notification,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		return fmt.Errorf("clearing notifications: %w", err)
	}

	now := time.Now()
	for _, n := range notifications {
		row := toRow(n, now)
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO notifications (
				id, type, read,
				conversation_id, conversation_type, conversation_name,
				actor_id, actor_name, actor_image_url,
				profile_id, created_at, fetched_at
			) VALUES (
				:id, :type, :read,
				:conversation_id, :conversation_type, :conversation_name,
				:actor_id, :actor_name, :actor_image_url,
				:profile_id, :created_at, :fetched_at
			)`, row)
		if err != nil {
			return fmt.Errorf("inserting notification %s: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetNotifications returns the cached notification list, newest first.
func (s *SQLiteStore) GetNotifications(
	ctx context.Context,
) ([]model.Notification, error) {
	var rows []notificationRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, type, read,
		       conversation_id, conversation_type, conversation_name,
		       actor_id, actor_name, actor_image_url,
		       profile_id, created_at, fetched_at
		FROM notifications
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}

	notifications := make([]model.Notification, 0, len(rows))
	for _, r := range rows {
		notifications = append(notifications, r.toModel())
	}
	return notifications, nil
}

// MarkConversationRead flags all cached message notifications of a
// conversation as read.
func (s *SQLiteStore) MarkConversationRead(
	ctx context.Context,
	conversationID string,
) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET read = 1
		WHERE conversation_id = ? AND type = ?`,
		conversationID, string(model.NotificationMessage))
	if err != nil {
		return fmt.Errorf("marking conversation %s read: %w", conversationID, err)
	}
	return nil
}

// SaveProfile caches the signed-in user's profile, replacing any
// previously cached one.
func (s *SQLiteStore) SaveProfile(ctx context.Context, user model.User) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM profile"); err != nil {
		return fmt.Errorf("clearing profile: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profile (id, first_name, last_name, image_url, fetched_at)
		VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.FirstName, user.LastName, user.ImageURL, time.Now())
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetProfile returns the cached profile, or nil when nothing is cached.
func (s *SQLiteStore) GetProfile(ctx context.Context) (*model.User, error) {
	var row struct {
		ID        string `db:"id"`
		FirstName string `db:"first_name"`
		LastName  string `db:"last_name"`
		ImageURL  string `db:"image_url"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT id, first_name, last_name, image_url FROM profile LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}

	return &model.User{
		ID:        row.ID,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		ImageURL:  row.ImageURL,
	}, nil
}
