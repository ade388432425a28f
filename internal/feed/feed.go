package feed

import (
	"context"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvu/chatdeck/internal/aggregate"
	"github.com/nvu/chatdeck/internal/api"
	"github.com/nvu/chatdeck/internal/model"
	"github.com/nvu/chatdeck/internal/realtime"
	"github.com/nvu/chatdeck/internal/store"
)

// fetchTimeout is the maximum time allowed for a single backend call.
const fetchTimeout = 30 * time.Second

// NotificationAPI is the slice of the backend client the feed needs.
type NotificationAPI interface {
	Notifications(ctx context.Context, limit, offset int) ([]model.Notification, error)
	MarkConversationRead(ctx context.Context, conversationID string) error
}

// CacheLoadedMsg carries the locally cached notification list, served
// before the first backend refresh completes.
type CacheLoadedMsg struct {
	Notifications []model.Notification
}

// RefreshResultMsg is sent when a full notification fetch completes.
type RefreshResultMsg struct {
	Notifications []model.Notification
	Error         error
	AuthError     *AuthErrorMsg
}

// AuthErrorMsg signals that the backend rejected the access token.
type AuthErrorMsg struct {
	Message string
}

// EventMsg wraps a realtime event for the update loop.
type EventMsg struct {
	Event realtime.Event
}

// OpenResultMsg is sent when an optimistic open's mark-read request
// settles.
type OpenResultMsg struct {
	ConversationID string
	Error          error
}

// OpenedConversationMsg asks the root model to navigate to a
// conversation's detail view. Emitted only after mark-read succeeded.
type OpenedConversationMsg struct {
	ConversationID string
}

// Feed owns the authoritative in-memory notification list and the
// derived unread summaries. All state mutation happens on the Bubble
// Tea update loop; background goroutines only fetch and pump messages.
type Feed struct {
	api      NotificationAPI
	store    store.Store
	events   realtime.EventSource
	agg      *aggregate.Aggregator
	user         model.User
	pageSize     int
	refreshEvery time.Duration
	logger       *log.Logger

	notifications []model.Notification
	lastRefresh   time.Time
	eventCh       chan realtime.Event
	subs          []realtime.Subscription
}

// New creates a Feed for the given user. The store may warm the list
// before the first refresh; the event source drives incremental
// updates. refreshEvery is the fallback full-refresh interval used
// while the realtime connection is down.
func New(
	client NotificationAPI,
	s store.Store,
	events realtime.EventSource,
	user model.User,
	pageSize int,
	refreshEvery time.Duration,
	logger *log.Logger,
) *Feed {
	if logger == nil {
		logger = log.Default()
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	if refreshEvery <= 0 {
		refreshEvery = 5 * time.Minute
	}
	return &Feed{
		api:          client,
		store:        s,
		events:       events,
		agg:          aggregate.New(),
		user:         user,
		pageSize:     pageSize,
		refreshEvery: refreshEvery,
		logger:       logger,
		lastRefresh:  time.Now(),
		eventCh:      make(chan realtime.Event, 16),
	}
}

// Start registers the realtime handlers and returns the initial
// commands: load the cache, refresh from the backend, and begin
// waiting for events.
func (f *Feed) Start() tea.Cmd {
	for _, kind := range []realtime.Kind{
		realtime.KindNotificationNew,
		realtime.KindNotificationUpdate,
		realtime.KindConversationRead,
	} {
		sub := f.events.Subscribe(kind, f.enqueue)
		f.subs = append(f.subs, sub)
	}

	return tea.Batch(f.loadCache(), f.Refresh(), f.WaitForEvent())
}

// Stop deregisters the feed's realtime handlers.
func (f *Feed) Stop() {
	for _, sub := range f.subs {
		sub.Unsubscribe()
	}
	f.subs = nil
}

// enqueue pushes a realtime event toward the update loop without
// blocking the socket's read loop.
func (f *Feed) enqueue(ev realtime.Event) {
	select {
	case f.eventCh <- ev:
	default:
		// Drop if the channel is full; the next full refresh catches up.
		f.logger.Printf("feed: event channel full, dropped %s", ev.Kind)
	}
}

// WaitForEvent returns a command that waits for the next realtime
// event. It must be re-issued after each EventMsg to keep listening.
func (f *Feed) WaitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-f.eventCh
		if !ok {
			return nil
		}
		return EventMsg{Event: ev}
	}
}

// loadCache reads the locally cached notification list.
func (f *Feed) loadCache() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		notifications, err := f.store.GetNotifications(ctx)
		if err != nil {
			f.logger.Printf("feed: loading cache: %v", err)
			return CacheLoadedMsg{}
		}
		return CacheLoadedMsg{Notifications: notifications}
	}
}

// Refresh fetches the full notification list from the backend.
func (f *Feed) Refresh() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		notifications, err := f.api.Notifications(ctx, f.pageSize, 0)
		if err != nil {
			if api.IsAuthError(err) {
				return RefreshResultMsg{
					Error: err,
					AuthError: &AuthErrorMsg{
						Message: "session expired; sign in again",
					},
				}
			}
			return RefreshResultMsg{Error: err}
		}
		return RefreshResultMsg{Notifications: notifications}
	}
}

// TickFallback returns a full-refresh command when the realtime
// connection is down and the fallback interval has elapsed since the
// last refresh settled. With a live socket it returns nil; events keep
// the state current.
func (f *Feed) TickFallback(connected bool, now time.Time) tea.Cmd {
	if connected || now.Sub(f.lastRefresh) < f.refreshEvery {
		return nil
	}
	f.lastRefresh = now
	return f.Refresh()
}

// ApplyCache seeds the authoritative list from the local cache. A
// refresh that already landed wins over the cache.
func (f *Feed) ApplyCache(msg CacheLoadedMsg) {
	if f.notifications != nil || len(msg.Notifications) == 0 {
		return
	}
	f.notifications = msg.Notifications
	f.agg.Rebuild(f.notifications, f.user)
}

// ApplyRefresh replaces the authoritative list with a fresh fetch,
// rebuilds the summaries, and persists the new list to the cache.
func (f *Feed) ApplyRefresh(msg RefreshResultMsg) tea.Cmd {
	f.lastRefresh = time.Now()
	if msg.Error != nil {
		f.logger.Printf("feed: refresh failed: %v", msg.Error)
		return nil
	}

	f.notifications = msg.Notifications
	if f.notifications == nil {
		f.notifications = []model.Notification{}
	}
	f.agg.Rebuild(f.notifications, f.user)

	// The cache write runs on its own goroutine; give it a snapshot so
	// later in-place read-state flips on the live list cannot race it.
	notifications := f.Notifications()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		if err := f.store.ReplaceNotifications(ctx, notifications); err != nil {
			f.logger.Printf("feed: caching notifications: %v", err)
		}
		return nil
	}
}

// ApplyEvent folds one realtime event into the feed state. It returns
// any follow-up command (a refresh or a cache write).
func (f *Feed) ApplyEvent(ev realtime.Event) tea.Cmd {
	switch ev.Kind {
	case realtime.KindNotificationNew:
		if ev.Notification == nil {
			return nil
		}
		f.notifications = append(
			[]model.Notification{*ev.Notification}, f.notifications...,
		)
		f.agg.Rebuild(f.notifications, f.user)
		return nil

	case realtime.KindNotificationUpdate:
		// Bulk read-state change elsewhere; refetch truth from source.
		return f.Refresh()

	case realtime.KindConversationRead:
		if ev.ConversationRead == nil {
			return nil
		}
		return f.applyConversationRead(ev.ConversationRead.ConversationID)

	default:
		return nil
	}
}

// applyConversationRead performs the targeted summary removal for a
// conversation that was marked read, without a full rebuild, and keeps
// the in-memory list and cache consistent with it.
func (f *Feed) applyConversationRead(conversationID string) tea.Cmd {
	f.agg.MarkConversationRead(conversationID)
	f.markListRead(conversationID)

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		if err := f.store.MarkConversationRead(ctx, conversationID); err != nil {
			f.logger.Printf("feed: caching read-state: %v", err)
		}
		return nil
	}
}

// OpenConversation starts the optimistic open flow: remove the summary
// locally, then ask the backend to mark the conversation read. While a
// request for the same conversation is outstanding, repeat opens are
// suppressed and return nil.
func (f *Feed) OpenConversation(conversationID string) tea.Cmd {
	if !f.agg.BeginOpen(conversationID) {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		err := f.api.MarkConversationRead(ctx, conversationID)
		return OpenResultMsg{ConversationID: conversationID, Error: err}
	}
}

// ApplyOpenResult settles an optimistic open. On success the read
// state becomes durable and navigation is requested; on failure the
// optimistic edit is discarded and the summaries are recomputed from
// the untouched authoritative list.
func (f *Feed) ApplyOpenResult(msg OpenResultMsg) tea.Cmd {
	f.agg.SettleOpen(msg.ConversationID)

	if msg.Error != nil {
		f.logger.Printf(
			"feed: mark-read for %s failed: %v", msg.ConversationID, msg.Error,
		)
		f.agg.Rebuild(f.notifications, f.user)
		return nil
	}

	f.markListRead(msg.ConversationID)
	// Idempotent against a concurrent rebuild: the removal below is a
	// no-op when the summary is already gone.
	f.agg.MarkConversationRead(msg.ConversationID)

	conversationID := msg.ConversationID
	persist := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		if err := f.store.MarkConversationRead(ctx, conversationID); err != nil {
			f.logger.Printf("feed: caching read-state: %v", err)
		}
		return nil
	}
	navigate := func() tea.Msg {
		return OpenedConversationMsg{ConversationID: conversationID}
	}
	return tea.Batch(persist, navigate)
}

// markListRead flags the in-memory message notifications of a
// conversation as read so a later rebuild does not resurrect its
// summary.
func (f *Feed) markListRead(conversationID string) {
	for i := range f.notifications {
		if f.notifications[i].ConversationID == conversationID &&
			f.notifications[i].Type == model.NotificationMessage {
			f.notifications[i].Read = true
		}
	}
}

// SetUser switches the feed to a new identity and recomputes the
// summaries, since self-suppression depends on who is signed in.
func (f *Feed) SetUser(user model.User) {
	f.user = user
	f.agg.Rebuild(f.notifications, f.user)
}

// Summaries returns the current unread conversation summaries in
// first-occurrence order.
func (f *Feed) Summaries() []model.ConversationSummary {
	return f.agg.Summaries()
}

// TotalUnread returns the total count of unread message notifications
// across all summarized conversations.
func (f *Feed) TotalUnread() int {
	return f.agg.TotalUnread()
}

// Notifications returns the authoritative notification list, newest
// first.
func (f *Feed) Notifications() []model.Notification {
	out := make([]model.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out
}
