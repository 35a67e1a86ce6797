// Package server tracks room membership via the RoomRegistry.
package server

import "sync"

// RoomRegistry maps room names to the set of member connection ids. Rooms are
// created implicitly on first join and deleted as soon as the last member
// leaves; an empty room never persists in the registry.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
}

// NewRoomRegistry creates an empty registry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string]map[string]struct{})}
}

// AddMember adds a connection to a room, creating the room if needed.
// Idempotent.
func (r *RoomRegistry) AddMember(room, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[room] = members
	}
	members[id] = struct{}{}
}

// RemoveMember removes a connection from a room and garbage-collects the room
// when it empties.
func (r *RoomRegistry) RemoveMember(room, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// Members returns the connection ids currently in the room. An unknown or
// vacated room yields an empty slice, never an error.
func (r *RoomRegistry) Members(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make([]string, 0, len(r.rooms[room]))
	for id := range r.rooms[room] {
		members = append(members, id)
	}
	return members
}

// RoomsContaining returns every room the connection is a member of. With the
// one-room-per-session flow this is a 0-or-1 result, but the registry itself
// does not assume that.
func (r *RoomRegistry) RoomsContaining(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []string
	for room, members := range r.rooms {
		if _, ok := members[id]; ok {
			result = append(result, room)
		}
	}
	return result
}
