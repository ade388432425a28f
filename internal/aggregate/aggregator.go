package aggregate

import (
	"github.com/nvu/chatdeck/internal/model"
)

// groupNameFallback is shown for group conversations without a name.
const groupNameFallback = "Group Chat"

// BuildSummaries derives the per-conversation unread summaries from a
// flat notification list. It is a pure, single-pass projection:
//
//   - Only unread MESSAGE notifications with a conversation ID are
//     considered; everything else is ignored entirely.
//   - Group threads are keyed by conversation ID and titled by the
//     conversation name, falling back to "Group Chat".
//   - Direct records require a triggering actor and exclude the current
//     user's own activity. The gate applies per record, so a
//     self-authored message never inflates an existing thread's count
//     either.
//   - Repeat notifications for a known conversation increment its
//     unread count.
//
// The result preserves first-occurrence insertion order and contains at
// most one summary per conversation ID. Malformed records (missing
// conversation or actor where expected) are skipped, never an error.
func BuildSummaries(
	notifications []model.Notification,
	currentUser model.User,
) []model.ConversationSummary {
	summaries := make([]model.ConversationSummary, 0)
	index := make(map[string]int)

	for _, n := range notifications {
		if !n.IsUnreadMessage() {
			continue
		}

		group := n.Conversation != nil && n.Conversation.Type == model.ConversationGroup
		if !group {
			if n.TriggeredBy == nil {
				continue
			}
			if isSelf(*n.TriggeredBy, currentUser) {
				continue
			}
		}

		if i, ok := index[n.ConversationID]; ok {
			summaries[i].UnreadCount++
			continue
		}

		var summary model.ConversationSummary
		if group {
			name := n.Conversation.Name
			if name == "" {
				name = groupNameFallback
			}
			summary = model.ConversationSummary{
				ConversationID: n.ConversationID,
				Kind:           model.SummaryGroup,
				DisplayName:    name,
				UnreadCount:    1,
			}
		} else {
			summary = model.ConversationSummary{
				ConversationID: n.ConversationID,
				Kind:           model.SummaryDirect,
				DisplayName:    n.TriggeredBy.Name,
				AvatarRef:      n.TriggeredBy.ImageURL,
				UnreadCount:    1,
			}
		}

		index[n.ConversationID] = len(summaries)
		summaries = append(summaries, summary)
	}

	return summaries
}

// isSelf reports whether the actor is the current user. When both sides
// carry a stable profile ID the comparison uses it; otherwise it falls
// back to matching the actor name against the user's full or first
// name, which is how older backend payloads have to be handled.
func isSelf(actor model.Actor, user model.User) bool {
	if actor.ID != "" && user.ID != "" {
		return actor.ID == user.ID
	}
	return actor.Name == user.FullName() || actor.Name == user.FirstName
}

// Aggregator holds the current summary set and the in-flight guard for
// optimistic opens. It is not safe for concurrent use; all mutation is
// expected to happen on the UI event loop.
type Aggregator struct {
	summaries []model.ConversationSummary
	index     map[string]int
	inFlight  map[string]struct{}
}

// New creates an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{
		index:    make(map[string]int),
		inFlight: make(map[string]struct{}),
	}
}

// Rebuild discards the current summary set and recomputes it from the
// authoritative notification list. In-flight guards survive a rebuild;
// they belong to requests, not to summaries.
func (a *Aggregator) Rebuild(
	notifications []model.Notification,
	currentUser model.User,
) {
	a.summaries = BuildSummaries(notifications, currentUser)
	a.reindex()
}

// Summaries returns a copy of the current summary set in insertion
// order.
func (a *Aggregator) Summaries() []model.ConversationSummary {
	out := make([]model.ConversationSummary, len(a.summaries))
	copy(out, a.summaries)
	return out
}

// TotalUnread returns the sum of unread counts across all summaries.
func (a *Aggregator) TotalUnread() int {
	total := 0
	for _, s := range a.summaries {
		total += s.UnreadCount
	}
	return total
}

// MarkConversationRead removes the summary for the given conversation,
// if present. It reports whether a summary was removed; calling it for
// an unknown conversation is a no-op.
func (a *Aggregator) MarkConversationRead(conversationID string) bool {
	i, ok := a.index[conversationID]
	if !ok {
		return false
	}
	a.summaries = append(a.summaries[:i], a.summaries[i+1:]...)
	a.reindex()
	return true
}

// BeginOpen starts the optimistic open flow for a conversation. It
// removes the summary locally before any server confirmation and marks
// the conversation as in flight so repeated opens are suppressed until
// the request settles. It returns false when an open for the same
// conversation is already outstanding.
func (a *Aggregator) BeginOpen(conversationID string) bool {
	if _, outstanding := a.inFlight[conversationID]; outstanding {
		return false
	}
	a.inFlight[conversationID] = struct{}{}
	a.MarkConversationRead(conversationID)
	return true
}

// SettleOpen clears the in-flight guard for a conversation. It must be
// called exactly once per successful BeginOpen, regardless of whether
// the mark-read request succeeded. On failure the caller rolls back by
// calling Rebuild with the latest notification list.
func (a *Aggregator) SettleOpen(conversationID string) {
	delete(a.inFlight, conversationID)
}

// OpenInFlight reports whether an open request for the conversation is
// currently outstanding.
func (a *Aggregator) OpenInFlight(conversationID string) bool {
	_, ok := a.inFlight[conversationID]
	return ok
}

// reindex rebuilds the conversation ID lookup after any structural
// change to the summary slice.
func (a *Aggregator) reindex() {
	a.index = make(map[string]int, len(a.summaries))
	for i, s := range a.summaries {
		a.index[s.ConversationID] = i
	}
}
