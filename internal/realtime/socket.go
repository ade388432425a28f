package realtime

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// maxReconnectWait caps the backoff between reconnect attempts.
const maxReconnectWait = 30 * time.Second

// Socket is a websocket-backed EventSource. It dials the backend's
// event endpoint, decodes incoming frames, and dispatches them to
// subscribed handlers. A dropped connection is redialed with capped
// exponential backoff until Close is called.
type Socket struct {
	*Registry

	url    string
	token  string
	logger *log.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	closed    bool
	stopCh    chan struct{}
	started   bool
}

// SocketURL converts an http(s) base URL and a socket path into the
// ws(s) URL to dial.
func SocketURL(baseURL, path string) string {
	u := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return u + path
}

// NewSocket creates a Socket for the given ws(s) URL. The token is sent
// as a Bearer Authorization header during the handshake. The logger may
// be nil, in which case the standard logger is used.
func NewSocket(url, token string, logger *log.Logger) *Socket {
	if logger == nil {
		logger = log.Default()
	}
	return &Socket{
		Registry: NewRegistry(),
		url:      url,
		token:    token,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the connection loop. It returns immediately; dial
// failures are retried in the background. Calling Start twice is a
// no-op.
func (s *Socket) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true
	go s.run()
}

// Connected reports whether the socket currently has a live connection.
func (s *Socket) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Close tears down the connection and stops reconnecting.
func (s *Socket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conn := s.conn
	close(s.stopCh)
	s.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// run is the dial-read-reconnect loop.
func (s *Socket) run() {
	attempt := 0
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		conn, err := s.dial()
		if err != nil {
			wait := reconnectWait(attempt)
			attempt++
			s.logger.Printf(
				"realtime: dial %s failed (%v), retrying in %s",
				s.url, err, wait,
			)
			select {
			case <-s.stopCh:
				return
			case <-time.After(wait):
			}
			continue
		}

		attempt = 0
		// Close may have raced the dial; never resurrect a closed socket.
		if !s.setConn(conn) {
			conn.Close()
			return
		}
		s.readLoop(conn)
		s.setConn(nil)
	}
}

func (s *Socket) dial() (*websocket.Conn, error) {
	header := http.Header{}
	if s.token != "" {
		header.Set("Authorization", "Bearer "+s.token)
	}

	conn, _, err := websocket.DefaultDialer.Dial(s.url, header)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", s.url, err)
	}
	return conn, nil
}

// setConn records the live connection. It refuses after Close so a
// dial that was already in flight cannot mark the socket connected
// again.
func (s *Socket) setConn(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conn = conn
	s.connected = conn != nil
	return true
}

// readLoop reads frames until the connection drops. Malformed frames
// are logged and skipped so one bad payload never kills the stream.
func (s *Socket) readLoop(conn *websocket.Conn) {
	defer conn.Close()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.stopCh:
			default:
				s.logger.Printf("realtime: read error: %v", err)
			}
			return
		}

		ev, err := DecodeEvent(raw)
		if err != nil {
			s.logger.Printf("realtime: skipping frame: %v", err)
			continue
		}

		s.Dispatch(ev)
	}
}

// reconnectWait computes the backoff before the next dial attempt:
// 1s, 2s, 4s, ... capped at maxReconnectWait.
func reconnectWait(attempt int) time.Duration {
	if attempt > 5 {
		return maxReconnectWait
	}
	wait := time.Duration(1<<uint(attempt)) * time.Second
	if wait > maxReconnectWait {
		wait = maxReconnectWait
	}
	return wait
}
