// Package server tracks the identity bound to each live connection via the
// SessionRegistry.
package server

import "sync"

// Session is the identity bound to one connection: the self-asserted username
// and the room the connection currently occupies. Usernames are display
// labels, not keys; two sessions may claim the same name. Where a username is
// used as a storage key (permanent private chat, storage preferences) a
// duplicate causes cross-talk between the claimants — a known limitation.
type Session struct {
	ID       string
	Username string
	Room     string
}

// SessionRegistry maps connection ids to sessions. It is safe for concurrent
// use; all operations are O(1) map mutations under one mutex.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]Session)}
}

// Bind creates or overwrites the session for a connection id.
func (r *SessionRegistry) Bind(id, username, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = Session{ID: id, Username: username, Room: room}
}

// Lookup returns the session bound to the connection id, if any.
func (r *SessionRegistry) Lookup(id string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	return session, ok
}

// Unbind removes the session and returns it so the caller can run cleanup
// broadcasts for the departed identity.
func (r *SessionRegistry) Unbind(id string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	return session, ok
}
