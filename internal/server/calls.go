// Package server relays call signaling between pairs of connections. The
// server is a content-agnostic forwarder: signal blobs pass through verbatim,
// and all call state lives in the endpoints' own state machines. There is no
// server-side call registry and no ringing timeout; a vanished peer simply
// stops producing events.
package server

// handleCallUser forwards a call offer to the callee, stamped with the
// caller's connection id and display name so the callee can answer.
func (h *Hub) handleCallUser(c *Client, p CallUserPayload) {
	if p.UserToCall == "" {
		c.sendError("call-user requires a callee")
		return
	}

	caller, ok := h.sessions.Lookup(c.id)
	if !ok {
		return
	}

	h.emitTo(p.UserToCall, EventIncomingCall, IncomingCall{
		Signal:     p.SignalData,
		From:       c.id,
		CallerName: caller.Username,
	})
}

// handleAnswerCall forwards the answerer's signal back to the caller.
func (h *Hub) handleAnswerCall(c *Client, p AnswerCallPayload) {
	if p.To == "" {
		c.sendError("answer-call requires a target")
		return
	}

	if _, ok := h.sessions.Lookup(c.id); !ok {
		return
	}

	h.emitTo(p.To, EventCallAccepted, p.Signal)
}

// handleEndCall tells the other end the call is over.
func (h *Hub) handleEndCall(c *Client, p CallTargetPayload) {
	if p.To == "" {
		c.sendError("end-call requires a target")
		return
	}

	if _, ok := h.sessions.Lookup(c.id); !ok {
		return
	}

	h.emitTo(p.To, EventCallEnded, nil)
}

// handleRejectCall tells the caller the callee declined.
func (h *Hub) handleRejectCall(c *Client, p CallTargetPayload) {
	if p.To == "" {
		c.sendError("reject-call requires a target")
		return
	}

	if _, ok := h.sessions.Lookup(c.id); !ok {
		return
	}

	h.emitTo(p.To, EventCallRejected, nil)
}
