package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nvu/chatdeck/internal/aggregate"
	"github.com/nvu/chatdeck/internal/model"
)

var currentUser = model.User{
	ID:        "me",
	FirstName: "Dana",
	LastName:  "Reyes",
}

func groupNotification(id, conversationID, name string) model.Notification {
	return model.Notification{
		ID:             id,
		Type:           model.NotificationMessage,
		ConversationID: conversationID,
		Conversation: &model.ConversationRef{
			Type: model.ConversationGroup,
			Name: name,
		},
		ProfileID: currentUser.ID,
	}
}

func directNotification(id, conversationID, senderName string) model.Notification {
	return model.Notification{
		ID:             id,
		Type:           model.NotificationMessage,
		ConversationID: conversationID,
		Conversation: &model.ConversationRef{
			Type: model.ConversationDirect,
		},
		TriggeredBy: &model.Actor{
			Name:     senderName,
			ImageURL: "https://cdn.example.com/" + senderName + ".png",
		},
		ProfileID: currentUser.ID,
	}
}

func TestBuildSummaries_GroupCounting(t *testing.T) {
	notifications := []model.Notification{
		groupNotification("1", "c1", "Team"),
		groupNotification("2", "c1", "Team"),
	}

	summaries := aggregate.BuildSummaries(notifications, currentUser)
	require.Len(t, summaries, 1)
	require.Equal(t, "c1", summaries[0].ConversationID)
	require.Equal(t, model.SummaryGroup, summaries[0].Kind)
	require.Equal(t, "Team", summaries[0].DisplayName)
	require.Empty(t, summaries[0].AvatarRef)
	require.Equal(t, 2, summaries[0].UnreadCount)
}

func TestBuildSummaries_GroupNameFallback(t *testing.T) {
	summaries := aggregate.BuildSummaries(
		[]model.Notification{groupNotification("1", "c1", "")},
		currentUser,
	)
	require.Len(t, summaries, 1)
	require.Equal(t, "Group Chat", summaries[0].DisplayName)
}

func TestBuildSummaries_ExcludesIrrelevantRecords(t *testing.T) {
	read := groupNotification("1", "c1", "Team")
	read.Read = true

	noConversation := model.Notification{
		ID:   "2",
		Type: model.NotificationMessage,
		TriggeredBy: &model.Actor{
			Name: "Sam Ortiz",
		},
	}

	wrongType := model.Notification{
		ID:             "3",
		Type:           model.NotificationFollow,
		ConversationID: "c3",
		TriggeredBy: &model.Actor{
			Name: "Sam Ortiz",
		},
	}

	// Direct message without an actor: skipped, not an error.
	noActor := model.Notification{
		ID:             "4",
		Type:           model.NotificationMessage,
		ConversationID: "c4",
	}

	summaries := aggregate.BuildSummaries(
		[]model.Notification{read, noConversation, wrongType, noActor},
		currentUser,
	)
	require.Empty(t, summaries)
}

func TestBuildSummaries_SelfRecordDoesNotInflateExistingThread(t *testing.T) {
	fromOther := directNotification("1", "c1", "Sam Ortiz")
	fromSelf := directNotification("2", "c1", "Dana Reyes")
	fromSelf.TriggeredBy.ID = currentUser.ID
	missingActor := directNotification("3", "c1", "")
	missingActor.TriggeredBy = nil

	summaries := aggregate.BuildSummaries(
		[]model.Notification{fromOther, fromSelf, missingActor},
		currentUser,
	)
	require.Len(t, summaries, 1)
	require.Equal(t, "c1", summaries[0].ConversationID)
	require.Equal(t, 1, summaries[0].UnreadCount)
}

func TestBuildSummaries_SelfSuppressionByName(t *testing.T) {
	user := model.User{FirstName: "Dana", LastName: "Reyes"}

	byFirstName := directNotification("1", "c1", "Dana")
	byFullName := directNotification("2", "c2", "Dana Reyes")
	other := directNotification("3", "c3", "Sam Ortiz")

	summaries := aggregate.BuildSummaries(
		[]model.Notification{byFirstName, byFullName, other},
		user,
	)
	require.Len(t, summaries, 1)
	require.Equal(t, "c3", summaries[0].ConversationID)
	require.Equal(t, model.SummaryDirect, summaries[0].Kind)
	require.Equal(t, "Sam Ortiz", summaries[0].DisplayName)
	require.NotEmpty(t, summaries[0].AvatarRef)
}

func TestBuildSummaries_SelfSuppressionPrefersStableID(t *testing.T) {
	// Name collision with another user: the stable ID comparison keeps
	// the notification when both sides carry IDs.
	sameName := directNotification("1", "c1", "Dana")
	sameName.TriggeredBy.ID = "someone-else"

	self := directNotification("2", "c2", "D. Reyes")
	self.TriggeredBy.ID = "me"

	summaries := aggregate.BuildSummaries(
		[]model.Notification{sameName, self},
		currentUser,
	)
	require.Len(t, summaries, 1)
	require.Equal(t, "c1", summaries[0].ConversationID)
}

func TestBuildSummaries_UniqueConversationIDs(t *testing.T) {
	notifications := []model.Notification{
		groupNotification("1", "c1", "Team"),
		directNotification("2", "c2", "Sam Ortiz"),
		groupNotification("3", "c1", "Team"),
		directNotification("4", "c2", "Sam Ortiz"),
		directNotification("5", "c3", "Lee Park"),
	}

	summaries := aggregate.BuildSummaries(notifications, currentUser)

	seen := make(map[string]bool)
	for _, s := range summaries {
		require.False(t, seen[s.ConversationID],
			"duplicate summary for %s", s.ConversationID)
		seen[s.ConversationID] = true
		require.GreaterOrEqual(t, s.UnreadCount, 1)
	}
	require.Len(t, summaries, 3)
}

func TestBuildSummaries_InsertionOrderAndIdempotence(t *testing.T) {
	notifications := []model.Notification{
		directNotification("1", "c2", "Sam Ortiz"),
		groupNotification("2", "c1", "Team"),
		directNotification("3", "c3", "Lee Park"),
	}

	first := aggregate.BuildSummaries(notifications, currentUser)
	second := aggregate.BuildSummaries(notifications, currentUser)

	require.Equal(t, first, second)
	require.Equal(t, "c2", first[0].ConversationID)
	require.Equal(t, "c1", first[1].ConversationID)
	require.Equal(t, "c3", first[2].ConversationID)
}

func TestAggregator_MarkConversationRead(t *testing.T) {
	agg := aggregate.New()
	agg.Rebuild([]model.Notification{
		groupNotification("1", "c1", "Team"),
		directNotification("2", "c2", "Sam Ortiz"),
	}, currentUser)

	require.True(t, agg.MarkConversationRead("c1"))
	require.Len(t, agg.Summaries(), 1)
	require.Equal(t, "c2", agg.Summaries()[0].ConversationID)

	// Removing an absent conversation is a no-op.
	require.False(t, agg.MarkConversationRead("c1"))
	require.Len(t, agg.Summaries(), 1)
}

func TestAggregator_TotalUnread(t *testing.T) {
	agg := aggregate.New()
	agg.Rebuild([]model.Notification{
		groupNotification("1", "c1", "Team"),
		groupNotification("2", "c1", "Team"),
		directNotification("3", "c2", "Sam Ortiz"),
	}, currentUser)

	require.Equal(t, 3, agg.TotalUnread())
}

func TestAggregator_OptimisticOpenAndRollback(t *testing.T) {
	notifications := []model.Notification{
		groupNotification("1", "c1", "Team"),
		directNotification("2", "c2", "Sam Ortiz"),
	}

	agg := aggregate.New()
	agg.Rebuild(notifications, currentUser)
	expected := agg.Summaries()

	// The summary disappears locally before any server confirmation.
	require.True(t, agg.BeginOpen("c1"))
	require.Len(t, agg.Summaries(), 1)

	// Repeat opens for the same conversation are suppressed while the
	// request is outstanding.
	require.False(t, agg.BeginOpen("c1"))
	require.True(t, agg.OpenInFlight("c1"))

	// Failure: clear the guard and recompute truth from source.
	agg.SettleOpen("c1")
	require.False(t, agg.OpenInFlight("c1"))
	agg.Rebuild(notifications, currentUser)
	require.Equal(t, expected, agg.Summaries())

	// The guard is cleared unconditionally, so a retry is allowed.
	require.True(t, agg.BeginOpen("c1"))
}

func TestAggregator_RebuildAfterAllRead(t *testing.T) {
	n := groupNotification("1", "c1", "Team")

	agg := aggregate.New()
	agg.Rebuild([]model.Notification{n}, currentUser)
	require.Len(t, agg.Summaries(), 1)

	n.Read = true
	agg.Rebuild([]model.Notification{n}, currentUser)
	require.Empty(t, agg.Summaries())
}
