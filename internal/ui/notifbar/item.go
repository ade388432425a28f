package notifbar

import (
	"fmt"

	"github.com/nvu/chatdeck/internal/model"
)

// SummaryItem wraps a model.ConversationSummary so it can be used in a
// bubbles/list.
type SummaryItem struct {
	Summary model.ConversationSummary
}

// FilterValue returns the string used for fuzzy filtering.
func (i SummaryItem) FilterValue() string { return i.Summary.DisplayName }

// Title returns the summary line for the list: a kind glyph, the
// display name, and the unread count.
func (i SummaryItem) Title() string {
	return fmt.Sprintf("%s %s", glyph(i.Summary), i.Summary.DisplayName)
}

// Description returns the unread count line.
func (i SummaryItem) Description() string {
	if i.Summary.UnreadCount == 1 {
		return "1 unread message"
	}
	return fmt.Sprintf("%d unread messages", i.Summary.UnreadCount)
}

// glyph picks the marker shown before the name: group threads render a
// fixed glyph, direct threads an initial standing in for the avatar.
func glyph(s model.ConversationSummary) string {
	if s.Kind == model.SummaryGroup {
		return "👥"
	}
	if s.DisplayName != "" {
		return fmt.Sprintf("(%c)", []rune(s.DisplayName)[0])
	}
	return "(?)"
}
