package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/nvu/chatdeck/internal/model"
)

// TestUser is the signed-in user used across fixtures.
var TestUser = model.User{
	ID:        "me",
	FirstName: "Dana",
	LastName:  "Reyes",
	ImageURL:  "https://cdn.example.com/me.png",
}

// GroupMessage builds an unread group-message notification for the
// given conversation.
func GroupMessage(conversationID, groupName string) model.Notification {
	return model.Notification{
		ID:             uuid.NewString(),
		Type:           model.NotificationMessage,
		ConversationID: conversationID,
		Conversation: &model.ConversationRef{
			Type: model.ConversationGroup,
			Name: groupName,
		},
		ProfileID: TestUser.ID,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// DirectMessage builds an unread direct-message notification from the
// named sender.
func DirectMessage(conversationID, senderName string) model.Notification {
	return model.Notification{
		ID:             uuid.NewString(),
		Type:           model.NotificationMessage,
		ConversationID: conversationID,
		Conversation: &model.ConversationRef{
			Type: model.ConversationDirect,
		},
		TriggeredBy: &model.Actor{
			Name:     senderName,
			ImageURL: "https://cdn.example.com/" + senderName + ".png",
		},
		ProfileID: TestUser.ID,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}
