// Package store persists chat history in Redis. Room messages and private
// conversations live in capped lists, storage preferences in a single hash,
// mirroring the layout documented in the wire protocol: newest entries at the
// head, trimmed to a fixed cap on every append.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	roomKeyPrefix      = "messages:"
	tempKeyPrefix      = "temp_chat:"
	permanentKeyPrefix = "permanent_chat:"
	preferencesKey     = "storage_preferences"

	// listCap bounds every message list. Appends push to the head and trim
	// the tail, so overflow evicts the oldest entry rather than failing.
	listCap = 100

	roomHistoryLimit    = 10
	privateHistoryLimit = 50
)

// MessageTypeInfo and MessageTypeChat distinguish system notices from user
// chat inside a room's history.
const (
	MessageTypeInfo = "info"
	MessageTypeChat = "message"
)

// Message is a single room message as stored and as delivered to clients.
type Message struct {
	Type      string    `json:"type"`
	User      string    `json:"user,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// PrivateMessage is a direct message between two users.
type PrivateMessage struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Party identifies one side of a private conversation: the connection id for
// the ephemeral keyspace and the username for the permanent one.
type Party struct {
	ID       string
	Username string
}

// Store provides message persistence on top of a Redis client. The client is
// injected so tests and main control its lifecycle.
type Store struct {
	client *redis.Client
}

// New creates a Store around the given Redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// PairKey derives an order-independent key for a pair of identifiers, so both
// participants of a conversation resolve the same list.
func PairKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, ":")
}

// AppendRoomMessage pushes a message onto the head of the room's list and
// trims it to the cap in one go.
func (s *Store) AppendRoomMessage(ctx context.Context, room string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal room message: %w", err)
	}

	key := roomKeyPrefix + room
	if err := s.client.LPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("append room message: %w", err)
	}
	if err := s.client.LTrim(ctx, key, 0, listCap-1).Err(); err != nil {
		return fmt.Errorf("trim room messages: %w", err)
	}
	return nil
}

// RoomHistory returns the most recent room messages in chronological order,
// at most roomHistoryLimit of them.
func (s *Store) RoomHistory(ctx context.Context, room string) ([]Message, error) {
	entries, err := s.client.LRange(ctx, roomKeyPrefix+room, 0, roomHistoryLimit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch room history: %w", err)
	}

	messages := make([]Message, 0, len(entries))
	// The list is newest-first; walk it backwards for display order.
	for i := len(entries) - 1; i >= 0; i-- {
		var msg Message
		if err := json.Unmarshal([]byte(entries[i]), &msg); err != nil {
			return nil, fmt.Errorf("decode room message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// AppendPrivateMessage stores a direct message in the list selected by the
// sender's storage policy: permanent conversations key on usernames and
// survive reconnects, ephemeral ones key on connection ids and do not.
func (s *Store) AppendPrivateMessage(ctx context.Context, permanent bool, a, b Party, msg PrivateMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal private message: %w", err)
	}

	key := privateListKey(permanent, a, b)
	if err := s.client.LPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("append private message: %w", err)
	}
	if err := s.client.LTrim(ctx, key, 0, listCap-1).Err(); err != nil {
		return fmt.Errorf("trim private messages: %w", err)
	}
	return nil
}

// PrivateHistory returns the recent messages of one private conversation in
// chronological order, at most privateHistoryLimit of them. The policy
// selects the keyspace; histories from the two keyspaces are never merged.
func (s *Store) PrivateHistory(ctx context.Context, permanent bool, a, b Party) ([]PrivateMessage, error) {
	key := privateListKey(permanent, a, b)
	entries, err := s.client.LRange(ctx, key, 0, privateHistoryLimit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch private history: %w", err)
	}

	messages := make([]PrivateMessage, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		var msg PrivateMessage
		if err := json.Unmarshal([]byte(entries[i]), &msg); err != nil {
			return nil, fmt.Errorf("decode private message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// SetStoragePreference records whether the user wants outgoing private
// messages filed in the permanent keyspace.
func (s *Store) SetStoragePreference(ctx context.Context, username string, permanent bool) error {
	value := "0"
	if permanent {
		value = "1"
	}
	if err := s.client.HSet(ctx, preferencesKey, username, value).Err(); err != nil {
		return fmt.Errorf("set storage preference: %w", err)
	}
	return nil
}

// StoragePreference reports the user's storage preference, defaulting to
// ephemeral when the user never set one.
func (s *Store) StoragePreference(ctx context.Context, username string) (bool, error) {
	value, err := s.client.HGet(ctx, preferencesKey, username).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get storage preference: %w", err)
	}
	return value == "1", nil
}

func privateListKey(permanent bool, a, b Party) string {
	if permanent {
		return permanentKeyPrefix + PairKey(a.Username, b.Username)
	}
	return tempKeyPrefix + PairKey(a.ID, b.ID)
}
