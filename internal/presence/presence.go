// Package presence tracks which connection currently represents each user.
package presence

import "sync"

// Table is the in-memory user <-> connection mapping. At most one connection
// represents a user at any instant; a reconnect overwrites the prior mapping
// and the orphaned connection's eventual disconnect becomes a no-op.
//
// The table only tracks the mapping. Persisting durable online/offline
// status is the caller's job, done outside the table's lock.
type Table struct {
	mu         sync.RWMutex
	userToConn map[string]string
	connToUser map[string]string
}

func NewTable() *Table {
	return &Table{
		userToConn: make(map[string]string),
		connToUser: make(map[string]string),
	}
}

// OnConnect registers connID as the live connection for userID, overwriting
// any prior mapping for that user.
func (t *Table) OnConnect(connID, userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.userToConn[userID]; ok {
		delete(t.connToUser, old)
	}
	t.userToConn[userID] = connID
	t.connToUser[connID] = userID
}

// OnDisconnect removes the mapping for connID and returns the freed user id.
// ok is false when the connection was never registered or was already
// displaced by a reconnect.
func (t *Table) OnDisconnect(connID string) (userID string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	userID, ok = t.connToUser[connID]
	if !ok {
		return "", false
	}
	delete(t.connToUser, connID)
	delete(t.userToConn, userID)
	return userID, true
}

// IsOnline reports whether the user has a registered connection.
func (t *Table) IsOnline(userID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.userToConn[userID]
	return ok
}

// ConnectionFor returns the connection currently representing userID.
func (t *Table) ConnectionFor(userID string) (connID string, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	connID, ok = t.userToConn[userID]
	return connID, ok
}
