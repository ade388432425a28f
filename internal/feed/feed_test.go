package feed_test

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/nvu/chatdeck/internal/api"
	"github.com/nvu/chatdeck/internal/feed"
	"github.com/nvu/chatdeck/internal/model"
	"github.com/nvu/chatdeck/internal/realtime"
	"github.com/nvu/chatdeck/tests/testutil"
)

// fakeAPI implements feed.NotificationAPI with programmable responses.
type fakeAPI struct {
	notifications []model.Notification
	listErr       error
	markReadErr   error
	markReadCalls []string
}

func (f *fakeAPI) Notifications(
	ctx context.Context, limit, offset int,
) ([]model.Notification, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.notifications, nil
}

func (f *fakeAPI) MarkConversationRead(
	ctx context.Context, conversationID string,
) error {
	f.markReadCalls = append(f.markReadCalls, conversationID)
	return f.markReadErr
}

// fakeStore implements store.Store in memory.
type fakeStore struct {
	notifications []model.Notification
	profile       *model.User
	readCalls     []string
}

func (f *fakeStore) ReplaceNotifications(
	ctx context.Context, notifications []model.Notification,
) error {
	f.notifications = notifications
	return nil
}

func (f *fakeStore) GetNotifications(ctx context.Context) ([]model.Notification, error) {
	return f.notifications, nil
}

func (f *fakeStore) MarkConversationRead(ctx context.Context, conversationID string) error {
	f.readCalls = append(f.readCalls, conversationID)
	return nil
}

func (f *fakeStore) SaveProfile(ctx context.Context, user model.User) error {
	f.profile = &user
	return nil
}

func (f *fakeStore) GetProfile(ctx context.Context) (*model.User, error) {
	return f.profile, nil
}

// runCmd executes a tea.Cmd synchronously, flattening batches.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(t, c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func newTestFeed(client *fakeAPI, s *fakeStore) *feed.Feed {
	return feed.New(
		client, s, realtime.NewRegistry(), testutil.TestUser, 50,
		5*time.Minute, log.New(io.Discard, "", 0),
	)
}

func TestFeed_RefreshBuildsSummariesAndCaches(t *testing.T) {
	client := &fakeAPI{notifications: []model.Notification{
		testutil.GroupMessage("c1", "Team"),
		testutil.GroupMessage("c1", "Team"),
		testutil.DirectMessage("c2", "Sam Ortiz"),
	}}
	s := &fakeStore{}
	f := newTestFeed(client, s)

	msgs := runCmd(t, f.Refresh())
	require.Len(t, msgs, 1)
	result, ok := msgs[0].(feed.RefreshResultMsg)
	require.True(t, ok)
	require.NoError(t, result.Error)

	runCmd(t, f.ApplyRefresh(result))

	summaries := f.Summaries()
	require.Len(t, summaries, 2)
	require.Equal(t, "c1", summaries[0].ConversationID)
	require.Equal(t, 2, summaries[0].UnreadCount)
	require.Equal(t, 3, f.TotalUnread())

	// The fresh list was written to the cache.
	require.Len(t, s.notifications, 3)
}

func TestFeed_CacheWriteSnapshotUnaffectedByReadFlags(t *testing.T) {
	s := &fakeStore{}
	f := newTestFeed(&fakeAPI{}, s)

	cacheCmd := f.ApplyRefresh(feed.RefreshResultMsg{
		Notifications: []model.Notification{
			testutil.GroupMessage("c1", "Team"),
			testutil.DirectMessage("c2", "Sam Ortiz"),
		},
	})
	require.NotNil(t, cacheCmd)

	// Settle an open while the cache write is still pending: the flip to
	// read happens on the live list, concurrently with the write.
	done := make(chan struct{})
	go func() {
		defer close(done)
		cacheCmd()
	}()
	runCmd(t, f.ApplyOpenResult(feed.OpenResultMsg{ConversationID: "c1"}))
	<-done

	// The write captured a snapshot taken at refresh time.
	require.Len(t, s.notifications, 2)
	for _, n := range s.notifications {
		if n.ConversationID == "c1" {
			require.False(t, n.Read)
		}
	}
}

func TestFeed_TickFallbackRefreshesWhileDisconnected(t *testing.T) {
	f := newTestFeed(&fakeAPI{notifications: []model.Notification{
		testutil.GroupMessage("c1", "Team"),
	}}, &fakeStore{})

	now := time.Now()

	// A live socket suppresses the fallback entirely.
	require.Nil(t, f.TickFallback(true, now.Add(time.Hour)))

	// Disconnected but still inside the interval: nothing yet.
	require.Nil(t, f.TickFallback(false, now))

	// Interval elapsed: a refresh is issued and the clock resets.
	cmd := f.TickFallback(false, now.Add(10*time.Minute))
	require.NotNil(t, cmd)
	msgs := runCmd(t, cmd)
	result, ok := msgs[0].(feed.RefreshResultMsg)
	require.True(t, ok)
	require.NoError(t, result.Error)
	require.Nil(t, f.TickFallback(false, now.Add(11*time.Minute)))
}

func TestFeed_RefreshAuthError(t *testing.T) {
	client := &fakeAPI{listErr: &api.AuthError{Message: "expired"}}
	f := newTestFeed(client, &fakeStore{})

	msgs := runCmd(t, f.Refresh())
	result := msgs[0].(feed.RefreshResultMsg)
	require.Error(t, result.Error)
	require.NotNil(t, result.AuthError)
}

func TestFeed_CacheSeedsUntilRefreshLands(t *testing.T) {
	s := &fakeStore{notifications: []model.Notification{
		testutil.GroupMessage("c1", "Team"),
	}}
	f := newTestFeed(&fakeAPI{}, s)

	f.ApplyCache(feed.CacheLoadedMsg{Notifications: s.notifications})
	require.Len(t, f.Summaries(), 1)

	// Once a refresh has landed, a stale cache load must not clobber it.
	runCmd(t, f.ApplyRefresh(feed.RefreshResultMsg{
		Notifications: []model.Notification{},
	}))
	f.ApplyCache(feed.CacheLoadedMsg{Notifications: s.notifications})
	require.Empty(t, f.Summaries())
}

func TestFeed_NewNotificationEventRebuilds(t *testing.T) {
	f := newTestFeed(&fakeAPI{}, &fakeStore{})
	runCmd(t, f.ApplyRefresh(feed.RefreshResultMsg{
		Notifications: []model.Notification{testutil.GroupMessage("c1", "Team")},
	}))

	incoming := testutil.DirectMessage("c2", "Sam Ortiz")
	cmd := f.ApplyEvent(realtime.Event{
		Kind:         realtime.KindNotificationNew,
		Notification: &incoming,
	})
	require.Nil(t, cmd)

	summaries := f.Summaries()
	require.Len(t, summaries, 2)
	require.Equal(t, incoming.ID, f.Notifications()[0].ID)
}

func TestFeed_UpdateEventTriggersRefetch(t *testing.T) {
	client := &fakeAPI{}
	f := newTestFeed(client, &fakeStore{})

	cmd := f.ApplyEvent(realtime.Event{Kind: realtime.KindNotificationUpdate})
	require.NotNil(t, cmd)

	msgs := runCmd(t, cmd)
	_, ok := msgs[0].(feed.RefreshResultMsg)
	require.True(t, ok)
}

func TestFeed_ConversationReadEventRemovesTargeted(t *testing.T) {
	s := &fakeStore{}
	f := newTestFeed(&fakeAPI{}, s)
	runCmd(t, f.ApplyRefresh(feed.RefreshResultMsg{
		Notifications: []model.Notification{
			testutil.GroupMessage("c1", "Team"),
			testutil.DirectMessage("c2", "Sam Ortiz"),
		},
	}))

	cmd := f.ApplyEvent(realtime.Event{
		Kind:             realtime.KindConversationRead,
		ConversationRead: &realtime.ConversationRead{ConversationID: "c1"},
	})
	runCmd(t, cmd)

	summaries := f.Summaries()
	require.Len(t, summaries, 1)
	require.Equal(t, "c2", summaries[0].ConversationID)
	require.Equal(t, []string{"c1"}, s.readCalls)

	// The in-memory list was adjusted too, so a later rebuild does not
	// resurrect the removed summary.
	f.SetUser(testutil.TestUser)
	require.Len(t, f.Summaries(), 1)
}

func TestFeed_OpenConversationSuccess(t *testing.T) {
	client := &fakeAPI{}
	s := &fakeStore{}
	f := newTestFeed(client, s)
	runCmd(t, f.ApplyRefresh(feed.RefreshResultMsg{
		Notifications: []model.Notification{
			testutil.GroupMessage("c1", "Team"),
			testutil.DirectMessage("c2", "Sam Ortiz"),
		},
	}))

	cmd := f.OpenConversation("c1")
	require.NotNil(t, cmd)

	// Optimistic removal happens before the request settles.
	require.Len(t, f.Summaries(), 1)

	// A repeat open for the same conversation is suppressed while the
	// request is outstanding.
	require.Nil(t, f.OpenConversation("c1"))

	msgs := runCmd(t, cmd)
	result := msgs[0].(feed.OpenResultMsg)
	require.NoError(t, result.Error)
	require.Equal(t, []string{"c1"}, client.markReadCalls)

	settleMsgs := runCmd(t, f.ApplyOpenResult(result))

	var navigated bool
	for _, m := range settleMsgs {
		if nav, ok := m.(feed.OpenedConversationMsg); ok {
			require.Equal(t, "c1", nav.ConversationID)
			navigated = true
		}
	}
	require.True(t, navigated)
	require.Equal(t, []string{"c1"}, s.readCalls)

	// Guard cleared, read-state durable: another open may start and a
	// rebuild keeps the summary gone.
	f.SetUser(testutil.TestUser)
	require.Len(t, f.Summaries(), 1)
	require.NotNil(t, f.OpenConversation("c2"))
}

func TestFeed_OpenConversationFailureRollsBack(t *testing.T) {
	client := &fakeAPI{markReadErr: errors.New("network down")}
	f := newTestFeed(client, &fakeStore{})

	original := []model.Notification{
		testutil.GroupMessage("c1", "Team"),
		testutil.DirectMessage("c2", "Sam Ortiz"),
	}
	runCmd(t, f.ApplyRefresh(feed.RefreshResultMsg{Notifications: original}))
	expected := f.Summaries()

	cmd := f.OpenConversation("c1")
	require.Len(t, f.Summaries(), 1)

	msgs := runCmd(t, cmd)
	result := msgs[0].(feed.OpenResultMsg)
	require.Error(t, result.Error)

	navMsgs := runCmd(t, f.ApplyOpenResult(result))
	for _, m := range navMsgs {
		_, ok := m.(feed.OpenedConversationMsg)
		require.False(t, ok, "must not navigate on failure")
	}

	// Recovery recomputes truth from the untouched source list.
	require.Equal(t, expected, f.Summaries())

	// The guard is cleared unconditionally; the user may retry.
	require.NotNil(t, f.OpenConversation("c1"))
}

func TestFeed_StartSubscribesAndStopUnsubscribes(t *testing.T) {
	registry := realtime.NewRegistry()
	f := feed.New(
		&fakeAPI{}, &fakeStore{}, registry, testutil.TestUser, 50,
		5*time.Minute, log.New(io.Discard, "", 0),
	)

	// Start wires the handlers; dispatching an event reaches the feed.
	startCmd := f.Start()
	require.NotNil(t, startCmd)

	registry.Dispatch(realtime.Event{Kind: realtime.KindNotificationUpdate})
	msgs := runCmd(t, f.WaitForEvent())
	ev, ok := msgs[0].(feed.EventMsg)
	require.True(t, ok)
	require.Equal(t, realtime.KindNotificationUpdate, ev.Event.Kind)

	// Stop deregisters the handlers and is safe to call twice.
	f.Stop()
	f.Stop()
}
