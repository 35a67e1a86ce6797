// Package server orchestrates room membership: join and disconnect flows,
// welcome and history delivery, and roster broadcasts.
package server

import (
	"fmt"
	"log"
	"time"

	"github.com/wavechat/wavechat/internal/store"
)

// handleJoin binds the connection to a username and room, delivers the
// welcome notice and recent history to the joiner, announces the arrival to
// the rest of the room, and refreshes everyone's roster. A connection that is
// already in a room leaves it first, so no stale membership survives a move.
func (h *Hub) handleJoin(c *Client, p JoinPayload) {
	if p.Username == "" || p.Room == "" {
		c.sendError("join requires a username and a room")
		return
	}

	if prev, ok := h.sessions.Lookup(c.id); ok && prev.Room != "" {
		h.leaveRoom(prev)
	}

	h.sessions.Bind(c.id, p.Username, p.Room)
	h.rooms.AddMember(p.Room, c.id)

	history, err := h.store.RoomHistory(h.ctx, p.Room)
	if err != nil {
		// The joiner still gets a welcome and roster; history is best-effort.
		log.Printf("Error fetching history for room %q: %v", p.Room, err)
		history = nil
	}

	h.emit(c, EventMessage, store.Message{
		Type:      store.MessageTypeInfo,
		Content:   fmt.Sprintf("Welcome to %s!", p.Room),
		Timestamp: time.Now(),
	})
	h.emit(c, EventMessageHistory, history)

	h.broadcastToRoom(p.Room, EventMessage, store.Message{
		Type:      store.MessageTypeInfo,
		Content:   fmt.Sprintf("%s has joined the room", p.Username),
		Timestamp: time.Now(),
	}, c.id)

	h.broadcastRoomUsers(p.Room)
}

// handleDisconnect tears down the departed connection's membership and tells
// the remaining room members. A connection that never joined is a no-op.
func (h *Hub) handleDisconnect(c *Client) {
	session, ok := h.sessions.Unbind(c.id)
	if !ok {
		return
	}

	h.rooms.RemoveMember(session.Room, c.id)

	h.broadcastToRoom(session.Room, EventMessage, store.Message{
		Type:      store.MessageTypeInfo,
		Content:   fmt.Sprintf("%s has left the room", session.Username),
		Timestamp: time.Now(),
	}, "")
	h.broadcastRoomUsers(session.Room)
}

// leaveRoom removes a still-connected session from its current room and
// notifies the members left behind. Used by the rejoin flow.
func (h *Hub) leaveRoom(session Session) {
	h.rooms.RemoveMember(session.Room, session.ID)

	h.broadcastToRoom(session.Room, EventMessage, store.Message{
		Type:      store.MessageTypeInfo,
		Content:   fmt.Sprintf("%s has left the room", session.Username),
		Timestamp: time.Now(),
	}, session.ID)
	h.broadcastRoomUsers(session.Room)
}

// broadcastRoomUsers sends the current roster to every member of the room.
// If the room just emptied, the membership set is gone and nobody is told,
// which is the intended outcome.
func (h *Hub) broadcastRoomUsers(room string) {
	members := h.rooms.Members(room)
	users := make([]RoomUser, 0, len(members))
	for _, id := range members {
		session, ok := h.sessions.Lookup(id)
		if !ok {
			continue
		}
		users = append(users, RoomUser{ID: id, Username: session.Username})
	}
	h.broadcastToRoom(room, EventRoomUsers, users, "")
}
