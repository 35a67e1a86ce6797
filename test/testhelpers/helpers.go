// Package testhelpers provides shared utilities for integration tests: a
// fully wired relay server on an in-process Redis, and websocket helpers for
// driving the event protocol.
package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/wavechat/wavechat/internal/server"
	"github.com/wavechat/wavechat/internal/store"
)

// Relay bundles a running relay server and its hub for a test's lifetime.
type Relay struct {
	HTTP *httptest.Server
	Hub  *server.Hub
}

// StartRelay wires a hub, registries, and a miniredis-backed store behind an
// httptest server. Everything is torn down via t.Cleanup. With no origins
// given, all origins are allowed.
func StartRelay(t *testing.T, origins ...string) *Relay {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hub := server.NewHub(server.NewSessionRegistry(), server.NewRoomRegistry(), store.New(client))
	go hub.Run()
	t.Cleanup(func() { _ = hub.Shutdown(2 * time.Second) })

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cfg := server.Config{AllowedOrigins: origins}.Sanitize()

	ts := httptest.NewServer(server.SetupRoutes(hub, cfg))
	t.Cleanup(ts.Close)

	return &Relay{HTTP: ts, Hub: hub}
}

// Dial opens a websocket connection to the relay's /ws endpoint.
func Dial(t *testing.T, relay *Relay) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(relay.HTTP.URL, "http") + "/ws"
	header := http.Header{"Origin": []string{"http://client.example.com"}}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", wsURL, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// Send writes one event envelope to the connection.
func Send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()

	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("Failed to marshal %s payload: %v", event, err)
		}
		raw = encoded
	}
	payload, err := json.Marshal(server.Envelope{Event: event, Data: raw})
	if err != nil {
		t.Fatalf("Failed to marshal %s envelope: %v", event, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		t.Fatalf("Failed to send %s: %v", event, err)
	}
}

// ReadEnvelope reads the next event from the connection, failing the test if
// nothing arrives within two seconds.
func ReadEnvelope(t *testing.T, conn *websocket.Conn) server.Envelope {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}

	var env server.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		t.Fatalf("Failed to decode envelope %q: %v", payload, err)
	}
	return env
}

// WaitForEvent reads events until one with the given name arrives, skipping
// any others queued in between.
func WaitForEvent(t *testing.T, conn *websocket.Conn, event string) server.Envelope {
	t.Helper()

	for i := 0; i < 20; i++ {
		env := ReadEnvelope(t, conn)
		if env.Event == event {
			return env
		}
	}
	t.Fatalf("Event %q never arrived", event)
	return server.Envelope{}
}

// DecodeData unmarshals an envelope's payload into dest.
func DecodeData(t *testing.T, env server.Envelope, dest any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dest); err != nil {
		t.Fatalf("Failed to decode %s payload: %v", env.Event, err)
	}
}

// AssignedID waits for the server to assign the connection its id.
func AssignedID(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	var id string
	DecodeData(t, WaitForEvent(t, conn, server.EventAssignID), &id)
	if id == "" {
		t.Fatal("Assigned connection id is empty")
	}
	return id
}

// JoinRoom sends a join event and waits for the roster that completes the
// join flow.
func JoinRoom(t *testing.T, conn *websocket.Conn, username, room string) {
	t.Helper()
	Send(t, conn, server.EventJoin, server.JoinPayload{Username: username, Room: room})
	WaitForEvent(t, conn, server.EventRoomUsers)
}

// ExpectSilence asserts that no event arrives within the timeout. The read
// deadline poisons the connection, so only call this at the end of a test.
func ExpectSilence(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	if _, payload, err := conn.ReadMessage(); err == nil {
		t.Fatalf("Expected no event, got %s", payload)
	}
}
