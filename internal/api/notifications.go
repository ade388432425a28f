package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nvu/chatdeck/internal/model"
)

// notificationPage is the response envelope for the notification list
// endpoint.
type notificationPage struct {
	Notifications []model.Notification `json:"notifications"`
	TotalCount    int                  `json:"totalCount"`
}

// markReadRequest is the body for the mark-conversation-read endpoint.
type markReadRequest struct {
	ConversationID string `json:"conversationId"`
}

// messagePage is the response envelope for the conversation messages
// endpoint.
type messagePage struct {
	Messages []model.Message `json:"messages"`
}

// CurrentUser fetches the signed-in user's profile. A successful call
// doubles as a connectivity/credential check.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.Get(ctx, "/api/profile/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Notifications fetches a page of the user's notification list. The
// backend returns the newest records first.
func (c *Client) Notifications(
	ctx context.Context,
	limit, offset int,
) ([]model.Notification, error) {
	path := fmt.Sprintf("/api/notifications?limit=%d&offset=%d", limit, offset)

	var page notificationPage
	if err := c.Get(ctx, path, &page); err != nil {
		return nil, err
	}
	return page.Notifications, nil
}

// MarkConversationRead asks the backend to mark all of a conversation's
// notifications as read. Only the status matters; the response body
// carries no contract.
func (c *Client) MarkConversationRead(
	ctx context.Context,
	conversationID string,
) error {
	body := markReadRequest{ConversationID: conversationID}
	return c.Post(ctx, "/api/conversations/mark-read", body, nil)
}

// ConversationMessages fetches the most recent messages of a
// conversation for the detail view.
func (c *Client) ConversationMessages(
	ctx context.Context,
	conversationID string,
	limit int,
) ([]model.Message, error) {
	path := fmt.Sprintf(
		"/api/conversations/%s/messages?limit=%d",
		url.PathEscape(conversationID), limit,
	)

	var page messagePage
	if err := c.Get(ctx, path, &page); err != nil {
		return nil, err
	}
	return page.Messages, nil
}
