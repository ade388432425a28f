package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvu/chatdeck/internal/model"
	"github.com/nvu/chatdeck/internal/theme"
)

// messageLimit is how many recent messages the detail view fetches.
const messageLimit = 20

// fetchTimeout bounds the message fetch.
const fetchTimeout = 30 * time.Second

// MessagesAPI is the slice of the backend client this view needs.
type MessagesAPI interface {
	ConversationMessages(ctx context.Context, conversationID string, limit int) ([]model.Message, error)
}

// MessagesLoadedMsg carries the fetched messages for a conversation.
type MessagesLoadedMsg struct {
	ConversationID string
	Messages       []model.Message
	Error          error
}

// Model is the conversation detail view shown after an open succeeds.
type Model struct {
	api            MessagesAPI
	viewport       viewport.Model
	conversationID string
	title          string
	loading        bool
	loadError      error
	width          int
	height         int
}

// New creates a conversation detail model.
func New(client MessagesAPI, width, height int) Model {
	vp := viewport.New(width, height-2)
	return Model{
		api:      client,
		viewport: vp,
		width:    width,
		height:   height,
	}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}

// Open points the view at a conversation and returns the command that
// fetches its recent messages.
func (m *Model) Open(conversationID, title string) tea.Cmd {
	m.conversationID = conversationID
	m.title = title
	m.loading = true
	m.loadError = nil
	m.viewport.SetContent("")

	client := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		messages, err := client.ConversationMessages(
			ctx, conversationID, messageLimit,
		)
		return MessagesLoadedMsg{
			ConversationID: conversationID,
			Messages:       messages,
			Error:          err,
		}
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MessagesLoadedMsg:
		// A stale load for a previously opened conversation.
		if msg.ConversationID != m.conversationID {
			return m, nil
		}
		m.loading = false
		m.loadError = msg.Error
		if msg.Error == nil {
			m.viewport.SetContent(renderMessages(msg.Messages))
			m.viewport.GotoBottom()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the conversation detail panel.
func (m Model) View() string {
	header := theme.HeaderStyle.Render(m.title)

	switch {
	case m.loading:
		return header + "\n" + theme.HelpStyle.Render("loading messages...")
	case m.loadError != nil:
		return header + "\n" + theme.HelpStyle.Render(
			fmt.Sprintf("could not load messages: %v", m.loadError),
		)
	default:
		return header + "\n" + m.viewport.View()
	}
}

// renderMessages formats a message transcript oldest-first.
func renderMessages(messages []model.Message) string {
	if len(messages) == 0 {
		return theme.HelpStyle.Render("no messages yet")
	}

	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		sender := msg.Sender.Name
		if sender == "" {
			sender = "unknown"
		}
		lines = append(lines, fmt.Sprintf(
			"%s %s\n%s",
			theme.UnreadCountStyle.Render(sender),
			theme.HelpStyle.Render(msg.SentAt.Format("Jan 2 15:04")),
			msg.Body,
		))
	}
	return strings.Join(lines, "\n\n")
}
