package notifbar

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvu/chatdeck/internal/keys"
	"github.com/nvu/chatdeck/internal/model"
	"github.com/nvu/chatdeck/internal/theme"
)

// OpenRequestedMsg is sent when the user selects a conversation
// summary to open.
type OpenRequestedMsg struct {
	ConversationID string
}

// Model is the conversation summary bar: the list of conversations
// with unread messages.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a new summary bar model.
func New(k *keys.KeyMap, width, height int) Model {
	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, width, height)
	l.Title = "Unread Conversations"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}

// SetSummaries replaces the displayed summaries, preserving the
// cursor position where possible.
func (m *Model) SetSummaries(summaries []model.ConversationSummary) tea.Cmd {
	items := make([]list.Item, len(summaries))
	for i, s := range summaries {
		items[i] = SummaryItem{Summary: s}
	}
	return m.list.SetItems(items)
}

// Selected returns the currently highlighted summary, or nil when the
// list is empty.
func (m Model) Selected() *model.ConversationSummary {
	item, ok := m.list.SelectedItem().(SummaryItem)
	if !ok {
		return nil
	}
	return &item.Summary
}

// Update handles messages for the summary bar.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(keyMsg, m.keys.Select) {
			if selected := m.Selected(); selected != nil {
				id := selected.ConversationID
				return m, func() tea.Msg {
					return OpenRequestedMsg{ConversationID: id}
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the summary list.
func (m Model) View() string {
	return m.list.View()
}
