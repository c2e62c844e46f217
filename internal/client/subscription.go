package client

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Subscription is the explicit handle for one open event stream. It is
// released exactly once, on whichever comes first: the session reaching a
// terminal state, or the owning scope being torn down. Close is safe to
// call any number of times, including on a handle that never connected.
type Subscription struct {
	sessionID string

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	once   sync.Once
}

// SessionID returns the session this subscription belongs to.
func (s *Subscription) SessionID() string {
	if s == nil {
		return ""
	}
	return s.sessionID
}

// Close releases the underlying stream connection. Idempotent.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.mu.Lock()
		conn := s.conn
		s.conn = nil
		s.closed = true
		s.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
	})
}

// Closed reports whether the subscription has been released.
func (s *Subscription) Closed() bool {
	if s == nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Subscription) connection() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}
