package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client), client
}

func TestPairKeyOrderIndependent(t *testing.T) {
	assert.Equal(t, PairKey("a", "b"), PairKey("b", "a"))
	assert.Equal(t, "alice:bob", PairKey("bob", "alice"))
	assert.NotEqual(t, PairKey("a", "b"), PairKey("a", "c"))
}

func TestRoomHistoryChronologicalAndLimited(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		err := s.AppendRoomMessage(ctx, "lobby", Message{
			Type:      MessageTypeChat,
			User:      "alice",
			Content:   fmt.Sprintf("m%d", i),
			Timestamp: time.Now(),
		})
		require.NoError(t, err)
	}

	history, err := s.RoomHistory(ctx, "lobby")
	require.NoError(t, err)
	require.Len(t, history, roomHistoryLimit)

	// Most recent ten, oldest first.
	assert.Equal(t, "m5", history[0].Content)
	assert.Equal(t, "m14", history[len(history)-1].Content)
}

func TestRoomListNeverExceedsCap(t *testing.T) {
	s, client := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < listCap+20; i++ {
		err := s.AppendRoomMessage(ctx, "lobby", Message{
			Type:    MessageTypeChat,
			Content: fmt.Sprintf("m%d", i),
		})
		require.NoError(t, err)
	}

	length, err := client.LLen(ctx, "messages:lobby").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(listCap), length)
}

func TestRoomHistoryOfUnknownRoomIsEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	history, err := s.RoomHistory(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPrivateKeyspacesDoNotCollide(t *testing.T) {
	s, client := newTestStore(t)
	ctx := context.Background()

	alice := Party{ID: "conn-1", Username: "alice"}
	bob := Party{ID: "conn-2", Username: "bob"}
	msg := PrivateMessage{From: "alice", To: "bob", Content: "hello", Timestamp: time.Now()}

	require.NoError(t, s.AppendPrivateMessage(ctx, false, alice, bob, msg))
	require.NoError(t, s.AppendPrivateMessage(ctx, true, alice, bob, msg))

	tempLen, err := client.LLen(ctx, "temp_chat:conn-1:conn-2").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), tempLen)

	permLen, err := client.LLen(ctx, "permanent_chat:alice:bob").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), permLen)
}

func TestPrivateHistoryResolvesSameListForEitherParty(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	alice := Party{ID: "conn-1", Username: "alice"}
	bob := Party{ID: "conn-2", Username: "bob"}

	err := s.AppendPrivateMessage(ctx, false, alice, bob,
		PrivateMessage{From: "alice", To: "bob", Content: "psst"})
	require.NoError(t, err)

	// Bob asking about Alice reads the same list, party order reversed.
	history, err := s.PrivateHistory(ctx, false, bob, alice)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "psst", history[0].Content)
}

func TestPrivateHistoryChronologicalAndLimited(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	alice := Party{ID: "conn-1", Username: "alice"}
	bob := Party{ID: "conn-2", Username: "bob"}
	for i := 0; i < privateHistoryLimit+10; i++ {
		err := s.AppendPrivateMessage(ctx, true, alice, bob,
			PrivateMessage{From: "alice", To: "bob", Content: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
	}

	history, err := s.PrivateHistory(ctx, true, alice, bob)
	require.NoError(t, err)
	require.Len(t, history, privateHistoryLimit)
	assert.Equal(t, "m10", history[0].Content)
	assert.Equal(t, "m59", history[len(history)-1].Content)
}

func TestTogglingPreferenceDoesNotMoveStoredMessages(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	alice := Party{ID: "conn-1", Username: "alice"}
	bob := Party{ID: "conn-2", Username: "bob"}

	require.NoError(t, s.AppendPrivateMessage(ctx, false, alice, bob,
		PrivateMessage{From: "alice", To: "bob", Content: "ephemeral"}))
	require.NoError(t, s.SetStoragePreference(ctx, "alice", true))
	require.NoError(t, s.AppendPrivateMessage(ctx, true, alice, bob,
		PrivateMessage{From: "alice", To: "bob", Content: "permanent"}))

	permHistory, err := s.PrivateHistory(ctx, true, alice, bob)
	require.NoError(t, err)
	require.Len(t, permHistory, 1)
	assert.Equal(t, "permanent", permHistory[0].Content)

	tempHistory, err := s.PrivateHistory(ctx, false, alice, bob)
	require.NoError(t, err)
	require.Len(t, tempHistory, 1)
	assert.Equal(t, "ephemeral", tempHistory[0].Content)
}

func TestStoragePreferenceDefaultsToEphemeral(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	permanent, err := s.StoragePreference(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, permanent)
}

func TestStoragePreferenceRoundTrip(t *testing.T) {
	s, client := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetStoragePreference(ctx, "alice", true))
	permanent, err := s.StoragePreference(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, permanent)

	require.NoError(t, s.SetStoragePreference(ctx, "alice", false))
	permanent, err = s.StoragePreference(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, permanent)

	// Stored as "0"/"1" in one hash keyed by username.
	value, err := client.HGet(ctx, "storage_preferences", "alice").Result()
	require.NoError(t, err)
	assert.Equal(t, "0", value)
}
