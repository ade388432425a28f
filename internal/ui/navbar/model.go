package navbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nvu/chatdeck/internal/model"
	"github.com/nvu/chatdeck/internal/theme"
)

// Model is the top navigation bar: application title, realtime
// connection indicator, unread badge, and a toggleable dropdown
// listing recent notifications.
type Model struct {
	width         int
	title         string
	connected     bool
	unread        int
	dropdownOpen  bool
	dropdownLimit int
	notifications []model.Notification
}

// New creates a navigation bar model.
func New(title string, width, dropdownLimit int) Model {
	if dropdownLimit <= 0 {
		dropdownLimit = 10
	}
	return Model{
		title:         title,
		width:         width,
		dropdownLimit: dropdownLimit,
	}
}

// SetWidth updates the bar's render width.
func (m *Model) SetWidth(width int) {
	m.width = width
}

// SetConnected updates the realtime connection indicator.
func (m *Model) SetConnected(connected bool) {
	m.connected = connected
}

// SetUnread updates the unread badge count.
func (m *Model) SetUnread(count int) {
	m.unread = count
}

// SetNotifications replaces the dropdown's backing list, newest first.
func (m *Model) SetNotifications(notifications []model.Notification) {
	m.notifications = notifications
}

// ToggleDropdown opens or closes the notification dropdown.
func (m *Model) ToggleDropdown() {
	m.dropdownOpen = !m.dropdownOpen
}

// DropdownOpen reports whether the dropdown is showing.
func (m Model) DropdownOpen() bool {
	return m.dropdownOpen
}

// View renders the one-line navigation bar.
func (m Model) View() string {
	title := theme.HeaderStyle.Render(m.title)

	indicator := theme.DisconnectedStyle.Render("●")
	if m.connected {
		indicator = theme.ConnectedStyle.Render("●")
	}

	right := theme.HeaderStyle.Render(indicator)
	if m.unread > 0 {
		right = lipgloss.JoinHorizontal(
			lipgloss.Top,
			theme.BadgeStyle.Render(fmt.Sprintf("%d unread", m.unread)),
			right,
		)
	}

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	filler := theme.HeaderStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.HeaderStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, title, filler, right)
}

// ViewDropdown renders the dropdown panel, or an empty string when it
// is closed. The list is bounded for display only.
func (m Model) ViewDropdown() string {
	if !m.dropdownOpen {
		return ""
	}

	var lines []string
	count := 0
	for _, n := range m.notifications {
		if count >= m.dropdownLimit {
			break
		}
		lines = append(lines, dropdownLine(n))
		count++
	}
	if len(lines) == 0 {
		lines = append(lines, theme.HelpStyle.Render("no notifications"))
	}

	return theme.DropdownStyle.Render(strings.Join(lines, "\n"))
}

// dropdownLine formats one notification for the dropdown.
func dropdownLine(n model.Notification) string {
	marker := "•"
	if !n.Read {
		marker = theme.UnreadCountStyle.Render("●")
	}

	text := describe(n)
	if n.Read {
		text = theme.HelpStyle.Render(text)
	}
	return fmt.Sprintf("%s %s", marker, text)
}

// describe produces the human-readable dropdown text for a
// notification.
func describe(n model.Notification) string {
	actor := "Someone"
	if n.TriggeredBy != nil && n.TriggeredBy.Name != "" {
		actor = n.TriggeredBy.Name
	}

	switch n.Type {
	case model.NotificationMessage:
		if n.Conversation != nil &&
			n.Conversation.Type == model.ConversationGroup {
			name := n.Conversation.Name
			if name == "" {
				name = "Group Chat"
			}
			return fmt.Sprintf("New message in %s", name)
		}
		return fmt.Sprintf("%s sent you a message", actor)
	case model.NotificationFollow:
		return fmt.Sprintf("%s followed you", actor)
	case model.NotificationGroupInvite:
		return fmt.Sprintf("%s invited you to a group", actor)
	case model.NotificationEvent:
		return fmt.Sprintf("%s created an event", actor)
	default:
		return fmt.Sprintf("%s: activity", actor)
	}
}
