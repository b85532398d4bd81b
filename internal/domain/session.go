package domain

import (
	"sync"
	"time"
)

// Session tracks the authenticated identity behind one live connection.
// A connection authenticates during the websocket handshake, so a registered
// session is always bound to a user; it stays valid until the transport
// closes.
type Session struct {
	ConnID       string
	UserID       string
	Username     string
	CreatedAt    time.Time
	LastActiveAt time.Time
	mu           sync.RWMutex
}

func NewSession(connID, userID, username string) *Session {
	now := time.Now()
	return &Session{
		ConnID:       connID,
		UserID:       userID,
		Username:     username,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

func (s *Session) GetUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.UserID
}

func (s *Session) GetUsername() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Username
}

func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
}
