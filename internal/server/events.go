// Package server defines the event envelope and payload types exchanged with
// clients. Every websocket text message carries exactly one envelope; payload
// shapes are fixed per event name and validated at the boundary.
package server

import "encoding/json"

// Envelope wraps every inbound and outbound event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names.
const (
	EventJoin                 = "join"
	EventChatMessage          = "chatMessage"
	EventTyping               = "typing"
	EventPrivateMessage       = "private-message"
	EventGetPrivateHistory    = "get-private-history"
	EventPrivateTyping        = "private-typing"
	EventCallUser             = "call-user"
	EventAnswerCall           = "answer-call"
	EventEndCall              = "end-call"
	EventRejectCall           = "reject-call"
	EventSetStoragePreference = "set-storage-preference"
	EventGetStoragePreference = "get-storage-preference"
)

// Outbound event names.
const (
	EventAssignID          = "assign-id"
	EventMessage           = "message"
	EventMessageHistory    = "messageHistory"
	EventRoomUsers         = "roomUsers"
	EventUserTyping        = "userTyping"
	EventPrivateHistory    = "private-message-history"
	EventIncomingCall      = "incoming-call"
	EventCallAccepted      = "call-accepted"
	EventCallEnded         = "call-ended"
	EventCallRejected      = "call-rejected"
	EventStoragePreference = "storage-preference"
	EventError             = "error"
)

// JoinPayload binds a username and room to the sending connection.
type JoinPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// PrivateMessagePayload addresses a direct message to another connection.
type PrivateMessagePayload struct {
	To      string `json:"to"`
	Content string `json:"content"`
}

// PrivateHistoryPayload requests the conversation with another connection.
type PrivateHistoryPayload struct {
	OtherUserID string `json:"otherUserId"`
}

// PrivateTypingPayload relays a typing flag to one connection.
type PrivateTypingPayload struct {
	To       string `json:"to"`
	IsTyping bool   `json:"isTyping"`
}

// CallUserPayload initiates a call. The signal blob is opaque to the server.
type CallUserPayload struct {
	UserToCall string          `json:"userToCall"`
	SignalData json.RawMessage `json:"signalData"`
}

// AnswerCallPayload answers a call with the answerer's signal blob.
type AnswerCallPayload struct {
	To     string          `json:"to"`
	Signal json.RawMessage `json:"signal"`
}

// CallTargetPayload addresses an end or reject event to one connection.
type CallTargetPayload struct {
	To string `json:"to"`
}

// StoragePreferencePayload carries the per-username storage flag.
type StoragePreferencePayload struct {
	IsPermanent bool `json:"isPermanent"`
}

// TypingNotice is broadcast to a room or relayed to one connection when a
// user starts or stops typing.
type TypingNotice struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// RoomUser is one roster entry: the connection id clients use to address
// private messages and calls, plus the display name.
type RoomUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// IncomingCall notifies the callee of an offer. From carries the caller's
// connection id so the callee can answer.
type IncomingCall struct {
	Signal     json.RawMessage `json:"signal"`
	From       string          `json:"from"`
	CallerName string          `json:"callerName"`
}

// ErrorPayload reports a rejected malformed payload to the offending sender.
type ErrorPayload struct {
	Message string `json:"message"`
}

func encodeEvent(event string, data any) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = encoded
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
