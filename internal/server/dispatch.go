// Package server routes decoded event envelopes to their handlers.
package server

import "log"

// dispatch routes one inbound envelope to the matching handler. Payloads that
// fail to decode are rejected with an error reply; unknown event names are
// dropped with a log line.
func (h *Hub) dispatch(c *Client, env Envelope) {
	switch env.Event {
	case EventJoin:
		var p JoinPayload
		if c.decodePayload(env.Data, &p) {
			h.handleJoin(c, p)
		}

	case EventChatMessage:
		var content string
		if c.decodePayload(env.Data, &content) {
			h.handleChatMessage(c, content)
		}

	case EventTyping:
		var isTyping bool
		if c.decodePayload(env.Data, &isTyping) {
			h.handleTyping(c, isTyping)
		}

	case EventPrivateMessage:
		var p PrivateMessagePayload
		if c.decodePayload(env.Data, &p) {
			h.handlePrivateMessage(c, p)
		}

	case EventGetPrivateHistory:
		var p PrivateHistoryPayload
		if c.decodePayload(env.Data, &p) {
			h.handlePrivateHistory(c, p)
		}

	case EventPrivateTyping:
		var p PrivateTypingPayload
		if c.decodePayload(env.Data, &p) {
			h.handlePrivateTyping(c, p)
		}

	case EventCallUser:
		var p CallUserPayload
		if c.decodePayload(env.Data, &p) {
			h.handleCallUser(c, p)
		}

	case EventAnswerCall:
		var p AnswerCallPayload
		if c.decodePayload(env.Data, &p) {
			h.handleAnswerCall(c, p)
		}

	case EventEndCall:
		var p CallTargetPayload
		if c.decodePayload(env.Data, &p) {
			h.handleEndCall(c, p)
		}

	case EventRejectCall:
		var p CallTargetPayload
		if c.decodePayload(env.Data, &p) {
			h.handleRejectCall(c, p)
		}

	case EventSetStoragePreference:
		var p StoragePreferencePayload
		if c.decodePayload(env.Data, &p) {
			h.handleSetStoragePreference(c, p)
		}

	case EventGetStoragePreference:
		h.handleGetStoragePreference(c)

	default:
		log.Printf("Unknown event %q from %s; dropping", env.Event, c.addr)
	}
}
