// Package server handles room chat, private messaging, typing relays, and
// storage preferences.
package server

import (
	"log"
	"time"

	"github.com/wavechat/wavechat/internal/store"
)

// handleChatMessage persists a room message and broadcasts the stored copy to
// the whole room, sender included, so every client renders the authoritative
// version. Senders without a bound session are dropped silently: an unbound
// sender is a disconnect racing a stale transport event.
func (h *Hub) handleChatMessage(c *Client, content string) {
	session, ok := h.sessions.Lookup(c.id)
	if !ok {
		return
	}

	msg := store.Message{
		Type:      store.MessageTypeChat,
		User:      session.Username,
		Content:   content,
		Timestamp: time.Now(),
	}

	// Append and broadcast under roomSeq so delivery order within a room
	// matches store order.
	h.roomSeq.Lock()
	defer h.roomSeq.Unlock()

	if err := h.store.AppendRoomMessage(h.ctx, session.Room, msg); err != nil {
		log.Printf("Error storing message for room %q: %v", session.Room, err)
		return
	}
	h.broadcastToRoom(session.Room, EventMessage, msg, "")
}

// handleTyping relays a typing flag to the rest of the sender's room. The
// server does no debouncing; clients coalesce keystrokes before emitting.
func (h *Hub) handleTyping(c *Client, isTyping bool) {
	session, ok := h.sessions.Lookup(c.id)
	if !ok {
		return
	}

	h.broadcastToRoom(session.Room, EventUserTyping, TypingNotice{
		Username: session.Username,
		IsTyping: isTyping,
	}, c.id)
}

// handlePrivateMessage persists a direct message under the keyspace selected
// by the sender's storage preference and delivers it to both ends. Either
// party failing to resolve drops the event silently; the recipient may have
// disconnected mid-flight.
func (h *Hub) handlePrivateMessage(c *Client, p PrivateMessagePayload) {
	if p.To == "" {
		c.sendError("private-message requires a recipient")
		return
	}

	sender, ok := h.sessions.Lookup(c.id)
	if !ok {
		return
	}
	receiver, ok := h.sessions.Lookup(p.To)
	if !ok {
		return
	}

	msg := store.PrivateMessage{
		From:      sender.Username,
		To:        receiver.Username,
		Content:   p.Content,
		Timestamp: time.Now(),
	}

	// The sender's preference, not the recipient's, picks the keyspace:
	// each user's archival choice governs their own outgoing messages.
	permanent, err := h.store.StoragePreference(h.ctx, sender.Username)
	if err != nil {
		log.Printf("Error reading storage preference for %q: %v", sender.Username, err)
		return
	}

	err = h.store.AppendPrivateMessage(h.ctx, permanent,
		store.Party{ID: c.id, Username: sender.Username},
		store.Party{ID: p.To, Username: receiver.Username},
		msg)
	if err != nil {
		log.Printf("Error storing private message from %q: %v", sender.Username, err)
		return
	}

	h.emitTo(p.To, EventPrivateMessage, msg)
	h.emit(c, EventPrivateMessage, msg)
}

// handlePrivateHistory answers the requester with the stored conversation
// between it and the other connection, read from the keyspace selected by the
// requester's storage preference. Unresolvable parties yield no reply.
func (h *Hub) handlePrivateHistory(c *Client, p PrivateHistoryPayload) {
	if p.OtherUserID == "" {
		c.sendError("get-private-history requires the other user's id")
		return
	}

	requester, ok := h.sessions.Lookup(c.id)
	if !ok {
		return
	}
	other, ok := h.sessions.Lookup(p.OtherUserID)
	if !ok {
		return
	}

	permanent, err := h.store.StoragePreference(h.ctx, requester.Username)
	if err != nil {
		log.Printf("Error reading storage preference for %q: %v", requester.Username, err)
		return
	}

	history, err := h.store.PrivateHistory(h.ctx, permanent,
		store.Party{ID: c.id, Username: requester.Username},
		store.Party{ID: p.OtherUserID, Username: other.Username})
	if err != nil {
		log.Printf("Error fetching private history for %q: %v", requester.Username, err)
		return
	}

	h.emit(c, EventPrivateHistory, history)
}

// handlePrivateTyping relays a typing flag to one named connection.
func (h *Hub) handlePrivateTyping(c *Client, p PrivateTypingPayload) {
	if p.To == "" {
		c.sendError("private-typing requires a recipient")
		return
	}

	session, ok := h.sessions.Lookup(c.id)
	if !ok {
		return
	}

	h.emitTo(p.To, EventPrivateTyping, TypingNotice{
		Username: session.Username,
		IsTyping: p.IsTyping,
	})
}

// handleSetStoragePreference records the sender's archival choice. The flag
// keys on the username and only affects messages sent after the toggle;
// nothing already stored moves between keyspaces.
func (h *Hub) handleSetStoragePreference(c *Client, p StoragePreferencePayload) {
	session, ok := h.sessions.Lookup(c.id)
	if !ok {
		return
	}

	if err := h.store.SetStoragePreference(h.ctx, session.Username, p.IsPermanent); err != nil {
		log.Printf("Error setting storage preference for %q: %v", session.Username, err)
	}
}

// handleGetStoragePreference answers the sender with its current preference.
func (h *Hub) handleGetStoragePreference(c *Client) {
	session, ok := h.sessions.Lookup(c.id)
	if !ok {
		return
	}

	permanent, err := h.store.StoragePreference(h.ctx, session.Username)
	if err != nil {
		log.Printf("Error reading storage preference for %q: %v", session.Username, err)
		return
	}

	h.emit(c, EventStoragePreference, StoragePreferencePayload{IsPermanent: permanent})
}
