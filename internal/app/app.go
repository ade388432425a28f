package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvu/chatdeck/internal/api"
	"github.com/nvu/chatdeck/internal/feed"
	"github.com/nvu/chatdeck/internal/keys"
	"github.com/nvu/chatdeck/internal/model"
	"github.com/nvu/chatdeck/internal/realtime"
	"github.com/nvu/chatdeck/internal/session"
	"github.com/nvu/chatdeck/internal/store"
	"github.com/nvu/chatdeck/internal/ui"
	authview "github.com/nvu/chatdeck/internal/ui/auth"
	"github.com/nvu/chatdeck/internal/ui/conversation"
	"github.com/nvu/chatdeck/internal/ui/navbar"
	"github.com/nvu/chatdeck/internal/ui/notifbar"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewAuth ViewState = iota
	ViewSummaries
	ViewConversation
)

// connTickMsg drives the periodic connection indicator refresh.
type connTickMsg struct{}

// signedInMsg carries a validated session.
type signedInMsg struct {
	user    model.User
	client  *api.Client
	baseURL string
	token   string
}

// signInFailedMsg reports a rejected or unreachable sign-in attempt.
type signInFailedMsg struct {
	err error
}

// connTickInterval is how often the navbar's connection indicator is
// refreshed from the socket state.
const connTickInterval = 2 * time.Second

// Model is the root Bubble Tea model that manages view routing, the
// notification feed, and the realtime connection.
type Model struct {
	currentView ViewState
	layout      ui.Layout
	cfg         *model.AppConfig
	store       *store.SQLiteStore
	keys        *keys.KeyMap
	logger      *log.Logger

	client *api.Client
	socket *realtime.Socket
	feed   *feed.Feed
	user   model.User

	navBar    navbar.Model
	notifBar  notifbar.Model
	convoView conversation.Model
	authView  authview.Model

	ready    bool
	status   string
	showHelp bool
}

// New creates the root application model.
func New(cfg *model.AppConfig, s *store.SQLiteStore, logger *log.Logger) Model {
	if logger == nil {
		logger = log.Default()
	}
	k := keys.DefaultKeyMap()

	return Model{
		currentView: ViewAuth,
		cfg:         cfg,
		store:       s,
		keys:        k,
		logger:      logger,
		navBar:      navbar.New("chatdeck", 80, cfg.Display.DropdownLimit),
		notifBar:    notifbar.New(k, 80, 22),
		authView:    authview.New(cfg.Server.BaseURL, 80, 24),
	}
}

// Init attempts to resume a stored session; without one it shows the
// sign-in form.
func (m Model) Init() tea.Cmd {
	token := session.Token()
	if token == "" || m.cfg.Server.BaseURL == "" {
		return m.authView.Init()
	}
	return tea.Batch(
		validateSession(m.cfg.Server.BaseURL, token),
		m.authView.Init(),
	)
}

// validateSession checks stored credentials against the backend.
func validateSession(baseURL, token string) tea.Cmd {
	return func() tea.Msg {
		client := api.NewClient(baseURL, token)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := client.CurrentUser(ctx)
		if err != nil {
			return signInFailedMsg{err: err}
		}
		return signedInMsg{
			user:    *user,
			client:  client,
			baseURL: baseURL,
			token:   token,
		}
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.navBar.SetWidth(m.layout.ContentWidth())
		m.notifBar.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
		m.convoView.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
		m.authView.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
		return m.updateActiveView(msg)

	case signedInMsg:
		return m.startSession(msg)

	case signInFailedMsg:
		m.currentView = ViewAuth
		if api.IsAuthError(msg.err) {
			return m, m.authView.SetError("the backend rejected that token")
		}
		return m, m.authView.SetError(fmt.Sprintf("sign-in failed: %v", msg.err))

	case authview.LoginSubmittedMsg:
		m.cfg.Server.BaseURL = msg.BaseURL
		return m, validateSession(msg.BaseURL, msg.Token)

	case connTickMsg:
		var fallback tea.Cmd
		if m.socket != nil {
			connected := m.socket.Connected()
			m.navBar.SetConnected(connected)
			if m.feed != nil {
				// With the socket down, events no longer arrive; fall
				// back to periodic full refreshes until it recovers.
				fallback = m.feed.TickFallback(connected, time.Now())
			}
		}
		return m, tea.Batch(fallback, connTick())

	case feed.CacheLoadedMsg:
		if m.feed == nil {
			return m, nil
		}
		m.feed.ApplyCache(msg)
		return m, m.syncFeedViews()

	case feed.RefreshResultMsg:
		if m.feed == nil {
			return m, nil
		}
		if msg.AuthError != nil {
			m.currentView = ViewAuth
			m.teardownSession()
			return m, m.authView.SetError(msg.AuthError.Message)
		}
		if msg.Error != nil {
			m.status = "refresh failed; will retry on next event"
			return m, nil
		}
		m.status = ""
		cacheCmd := m.feed.ApplyRefresh(msg)
		return m, tea.Batch(cacheCmd, m.syncFeedViews())

	case feed.EventMsg:
		if m.feed == nil {
			return m, nil
		}
		followUp := m.feed.ApplyEvent(msg.Event)
		return m, tea.Batch(
			followUp,
			m.feed.WaitForEvent(),
			m.syncFeedViews(),
		)

	case feed.OpenResultMsg:
		if m.feed == nil {
			return m, nil
		}
		settleCmd := m.feed.ApplyOpenResult(msg)
		if msg.Error != nil {
			m.status = "could not open conversation; try again"
		}
		return m, tea.Batch(settleCmd, m.syncFeedViews())

	case feed.OpenedConversationMsg:
		return m.openConversationView(msg.ConversationID)

	case notifbar.OpenRequestedMsg:
		if m.feed == nil {
			return m, nil
		}
		openCmd := m.feed.OpenConversation(msg.ConversationID)
		return m, tea.Batch(openCmd, m.syncFeedViews())

	case conversation.MessagesLoadedMsg:
		var cmd tea.Cmd
		m.convoView, cmd = m.convoView.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m.updateActiveView(msg)
}

// startSession wires up the API client, feed, and realtime socket once
// credentials are validated.
func (m Model) startSession(msg signedInMsg) (tea.Model, tea.Cmd) {
	m.user = msg.user
	m.client = msg.client
	m.currentView = ViewSummaries

	if err := session.SaveToken(msg.token); err != nil {
		m.logger.Printf("app: storing token: %v", err)
	}
	if err := model.SaveConfig(model.DefaultConfigPath(), m.cfg); err != nil {
		m.logger.Printf("app: saving config: %v", err)
	}

	m.socket = realtime.NewSocket(
		realtime.SocketURL(msg.baseURL, m.cfg.Server.SocketPath),
		msg.token,
		m.logger,
	)
	m.feed = feed.New(
		m.client, m.store, m.socket, m.user,
		m.cfg.Feed.PageSize,
		time.Duration(m.cfg.Feed.RefreshIntervalSec)*time.Second,
		m.logger,
	)
	m.convoView = conversation.New(m.client, m.layout.ContentWidth(), m.layout.ContentHeight())
	m.socket.Start()

	persistProfile := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.store.SaveProfile(ctx, msg.user); err != nil {
			m.logger.Printf("app: caching profile: %v", err)
		}
		return nil
	}

	return m, tea.Batch(m.feed.Start(), connTick(), persistProfile)
}

// teardownSession stops the feed and socket after an auth failure.
func (m *Model) teardownSession() {
	if m.feed != nil {
		m.feed.Stop()
		m.feed = nil
	}
	if m.socket != nil {
		m.socket.Close()
		m.socket = nil
	}
	m.navBar.SetConnected(false)
}

// openConversationView navigates to the detail view for a conversation.
func (m Model) openConversationView(conversationID string) (tea.Model, tea.Cmd) {
	title := "Conversation"
	for _, n := range m.feed.Notifications() {
		if n.ConversationID != conversationID {
			continue
		}
		if n.Conversation != nil && n.Conversation.Name != "" {
			title = n.Conversation.Name
		} else if n.TriggeredBy != nil && n.TriggeredBy.Name != "" {
			title = n.TriggeredBy.Name
		}
		break
	}

	m.currentView = ViewConversation
	return m, m.convoView.Open(conversationID, title)
}

// syncFeedViews pushes current feed state into the views that render it.
func (m *Model) syncFeedViews() tea.Cmd {
	m.navBar.SetUnread(m.feed.TotalUnread())
	m.navBar.SetNotifications(m.feed.Notifications())
	return m.notifBar.SetSummaries(m.feed.Summaries())
}

// handleKeys routes key presses.
func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The auth form owns all keys while signing in.
	if m.currentView == ViewAuth {
		return m.updateActiveView(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.teardownSession()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Dropdown):
		m.navBar.ToggleDropdown()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.feed != nil {
			return m, m.feed.Refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewConversation {
			m.currentView = ViewSummaries
		}
		return m, nil
	}

	return m.updateActiveView(msg)
}

// updateActiveView forwards a message to the currently visible view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewAuth:
		m.authView, cmd = m.authView.Update(msg)
	case ViewSummaries:
		m.notifBar, cmd = m.notifBar.Update(msg)
	case ViewConversation:
		m.convoView, cmd = m.convoView.Update(msg)
	}
	return m, cmd
}

// connTick schedules the next connection indicator refresh.
func connTick() tea.Cmd {
	return tea.Tick(connTickInterval, func(time.Time) tea.Msg {
		return connTickMsg{}
	})
}

// View renders the full application frame.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	if m.currentView == ViewAuth {
		return m.authView.View()
	}

	var content string
	switch m.currentView {
	case ViewSummaries:
		content = m.notifBar.View()
	case ViewConversation:
		content = m.convoView.View()
	}

	if dropdown := m.navBar.ViewDropdown(); dropdown != "" {
		content = dropdown + "\n" + content
	}

	hints := m.statusHints()
	return m.layout.RenderWithFrame(
		m.navBar.View(),
		content,
		m.layout.RenderStatusBar(hints),
	)
}

// statusHints builds the status bar text.
func (m Model) statusHints() string {
	if m.status != "" {
		return m.status
	}
	if m.showHelp {
		return "j/k move | enter open | n notifications | r refresh | esc back | ? help | q quit"
	}
	if m.currentView == ViewConversation {
		return "esc back | q quit"
	}
	return "enter open | n notifications | r refresh | ? help | q quit"
}
