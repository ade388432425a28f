package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nvu/chatdeck/internal/model"
)

// Kind identifies a realtime event type on the wire.
type Kind string

const (
	// KindNotificationNew carries a freshly created notification.
	KindNotificationNew Kind = "notification:new"

	// KindNotificationUpdate signals a bulk read-state change; its
	// payload carries nothing the client consumes.
	KindNotificationUpdate Kind = "notification:update"

	// KindConversationRead signals that a conversation was marked read
	// elsewhere (e.g., another device of the same user).
	KindConversationRead Kind = "conversation:marked-as-read"
)

// ConversationRead is the payload of a conversation:marked-as-read
// event.
type ConversationRead struct {
	ConversationID string `json:"conversationId"`
	ProfileID      string `json:"profileId"`
}

// Event is a single decoded realtime event.
type Event struct {
	Kind Kind

	// Notification is set for notification:new events.
	Notification *model.Notification

	// ConversationRead is set for conversation:marked-as-read events.
	ConversationRead *ConversationRead
}

// Handler receives dispatched events.
type Handler func(Event)

// Subscription is a registered handler's handle; Unsubscribe removes
// the handler and is safe to call more than once.
type Subscription interface {
	Unsubscribe()
}

// EventSource is the injected capability consumers use to receive
// realtime events. Each consumer registers its own handlers and
// deregisters them when it goes away; the source itself is never
// shared mutable state.
type EventSource interface {
	Subscribe(kind Kind, fn Handler) Subscription
}

// Registry is a thread-safe handler registry implementing EventSource
// dispatch. The websocket source embeds one; tests use it directly as
// a fake source.
type Registry struct {
	mu       sync.Mutex
	nextID   int
	handlers map[Kind]map[int]Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[Kind]map[int]Handler),
	}
}

// Subscribe registers a handler for one event kind.
func (r *Registry) Subscribe(kind Kind, fn Handler) Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handlers[kind] == nil {
		r.handlers[kind] = make(map[int]Handler)
	}
	r.nextID++
	id := r.nextID
	r.handlers[kind][id] = fn

	return &subscription{registry: r, kind: kind, id: id}
}

// Dispatch delivers an event to every handler registered for its kind.
func (r *Registry) Dispatch(ev Event) {
	r.mu.Lock()
	fns := make([]Handler, 0, len(r.handlers[ev.Kind]))
	for _, fn := range r.handlers[ev.Kind] {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

type subscription struct {
	registry *Registry
	kind     Kind
	id       int
}

func (s *subscription) Unsubscribe() {
	s.registry.mu.Lock()
	defer s.registry.mu.Unlock()
	delete(s.registry.handlers[s.kind], s.id)
}

// frame is the wire format of a realtime event:
// {"event": "notification:new", "data": {...}}.
type frame struct {
	Event Kind            `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodeEvent parses a raw websocket frame into an Event. Unknown event
// kinds and malformed payloads return an error; the read loop logs and
// skips them rather than dropping the connection.
func DecodeEvent(raw []byte) (Event, error) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Event{}, fmt.Errorf("decoding event frame: %w", err)
	}

	switch f.Event {
	case KindNotificationNew:
		var n model.Notification
		if err := json.Unmarshal(f.Data, &n); err != nil {
			return Event{}, fmt.Errorf("decoding notification payload: %w", err)
		}
		return Event{Kind: KindNotificationNew, Notification: &n}, nil

	case KindNotificationUpdate:
		// Payload intentionally ignored; the event only signals that a
		// full refresh is needed.
		return Event{Kind: KindNotificationUpdate}, nil

	case KindConversationRead:
		var cr ConversationRead
		if err := json.Unmarshal(f.Data, &cr); err != nil {
			return Event{}, fmt.Errorf("decoding conversation-read payload: %w", err)
		}
		return Event{Kind: KindConversationRead, ConversationRead: &cr}, nil

	default:
		return Event{}, fmt.Errorf("unknown event kind %q", f.Event)
	}
}
